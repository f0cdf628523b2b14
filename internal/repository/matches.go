// internal/repository/matches.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/models"

	"github.com/google/uuid"
)

const MatchStatusPending = "pending"

const insertMatchQuery = `INSERT INTO broker_matches (id, user_id, broker_id, match_score, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id, broker_id) DO NOTHING`

// MatchRepository records ranked brokers as pending introductions.
type MatchRepository struct {
	db  *database.PostgresClient
	now func() time.Time
}

func NewMatchRepository(db *database.PostgresClient) *MatchRepository {
	return &MatchRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// SaveMatches inserts one pending row per match. Existing (user, broker)
// pairs are left untouched. It returns the number of new rows.
func (r *MatchRepository) SaveMatches(ctx context.Context, userID string, matches []models.MatchResult) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	inserted := 0
	createdAt := r.now()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, m := range matches {
			res, err := tx.ExecContext(ctx, insertMatchQuery,
				uuid.New().String(), userID, m.BrokerID, m.Score, MatchStatusPending, createdAt)
			if err != nil {
				return fmt.Errorf("%w: save match %s: %v", ErrQueryFailed, m.BrokerID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
