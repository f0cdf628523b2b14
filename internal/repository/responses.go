// internal/repository/responses.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/models"
)

const (
	listResponsesQuery = `SELECT session_id, question_order, topic, format, question_text, answer, answered_at
		FROM quiz_responses WHERE user_id = $1 ORDER BY question_order`

	upsertResponseQuery = `INSERT INTO quiz_responses
		(user_id, session_id, question_order, topic, format, question_text, answer, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, question_order) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			topic = EXCLUDED.topic,
			format = EXCLUDED.format,
			question_text = EXCLUDED.question_text,
			answer = EXCLUDED.answer,
			answered_at = EXCLUDED.answered_at`

	deleteResponsesQuery = `DELETE FROM quiz_responses WHERE user_id = $1`
)

// ResponseRepository stores quiz answers keyed by (user_id, question_order).
type ResponseRepository struct {
	db *database.PostgresClient
}

func NewResponseRepository(db *database.PostgresClient) *ResponseRepository {
	return &ResponseRepository{db: db}
}

func (r *ResponseRepository) ListResponses(ctx context.Context, userID string) ([]models.ResponseRecord, error) {
	rows, err := r.db.Query(ctx, listResponsesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	records := []models.ResponseRecord{}
	for rows.Next() {
		var (
			record       models.ResponseRecord
			sessionID    sql.NullString
			topic        sql.NullString
			format       sql.NullString
			questionText sql.NullString
			answer       []byte
		)
		if err := rows.Scan(&sessionID, &record.Order, &topic, &format, &questionText, &answer, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scan response: %v", ErrQueryFailed, err)
		}
		if err := json.Unmarshal(answer, &record.Answer); err != nil {
			return nil, fmt.Errorf("%w: decode answer %d: %v", ErrQueryFailed, record.Order, err)
		}
		record.SessionID = sessionID.String
		record.Topic = topic.String
		record.Format = models.QuestionFormat(format.String)
		record.QuestionText = questionText.String
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return records, nil
}

func (r *ResponseRepository) SaveResponse(ctx context.Context, userID string, record models.ResponseRecord) error {
	args, err := responseArgs(userID, record)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, upsertResponseQuery, args...); err != nil {
		return fmt.Errorf("%w: save response %d: %v", ErrQueryFailed, record.Order, err)
	}
	return nil
}

// SaveResponses writes the full set in one transaction.
func (r *ResponseRepository) SaveResponses(ctx context.Context, userID string, records []models.ResponseRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, record := range records {
			args, err := responseArgs(userID, record)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, upsertResponseQuery, args...); err != nil {
				return fmt.Errorf("%w: save response %d: %v", ErrQueryFailed, record.Order, err)
			}
		}
		return nil
	})
}

func (r *ResponseRepository) DeleteResponses(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.Exec(ctx, deleteResponsesQuery, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: delete responses: %v", ErrQueryFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return n, nil
}

func responseArgs(userID string, record models.ResponseRecord) ([]interface{}, error) {
	answer, err := json.Marshal(record.Answer)
	if err != nil {
		return nil, fmt.Errorf("encode answer %d: %w", record.Order, err)
	}
	return []interface{}{
		userID,
		record.SessionID,
		record.Order,
		record.Topic,
		string(record.Format),
		record.QuestionText,
		answer,
		record.Timestamp,
	}, nil
}
