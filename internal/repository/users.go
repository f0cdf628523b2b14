// internal/repository/users.go
package repository

import (
	"context"
	"fmt"

	"broker-match-workers/internal/common/database"
)

const userExistsQuery = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

type UserRepository struct {
	db *database.PostgresClient
}

func NewUserRepository(db *database.PostgresClient) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, userExistsQuery, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: user lookup: %v", ErrQueryFailed, err)
	}
	return exists, nil
}
