// internal/repository/brokers.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/models"

	"github.com/lib/pq"
)

// Test and demo accounts are excluded by email, same as BrokerProfile.IsTestAccount.
const listEligibleBrokersQuery = `SELECT b.id, b.user_id, u.name, u.email, b.company_name,
		b.specializations, b.experience_level, b.years_of_experience,
		b.average_rating, b.success_rate, b.is_verified, b.is_active
	FROM brokers b
	JOIN users u ON u.id = b.user_id
	WHERE b.is_active = true AND b.is_verified = true
		AND u.email NOT ILIKE '%test%' AND u.email NOT ILIKE '%demo%'
	ORDER BY b.id`

type BrokerRepository struct {
	db *database.PostgresClient
}

func NewBrokerRepository(db *database.PostgresClient) *BrokerRepository {
	return &BrokerRepository{db: db}
}

func (r *BrokerRepository) ListEligibleBrokers(ctx context.Context) ([]models.BrokerProfile, error) {
	rows, err := r.db.Query(ctx, listEligibleBrokersQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	brokers := []models.BrokerProfile{}
	for rows.Next() {
		var (
			b           models.BrokerProfile
			name        sql.NullString
			company     sql.NullString
			level       sql.NullString
			years       sql.NullInt64
			rating      sql.NullFloat64
			successRate sql.NullFloat64
			specs       pq.StringArray
		)
		if err := rows.Scan(&b.ID, &b.UserID, &name, &b.Email, &company,
			&specs, &level, &years, &rating, &successRate, &b.IsVerified, &b.IsActive); err != nil {
			return nil, fmt.Errorf("%w: scan broker: %v", ErrQueryFailed, err)
		}
		b.Name = name.String
		b.CompanyName = company.String
		b.ExperienceLevel = level.String
		b.YearsOfExperience = int(years.Int64)
		b.AverageRating = rating.Float64
		b.SuccessRate = successRate.Float64
		b.Specializations = []string(specs)
		if b.Specializations == nil {
			b.Specializations = []string{}
		}
		brokers = append(brokers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return brokers, nil
}
