// internal/models/broker.go
package models

import "strings"

const (
	LevelJunior       = "junior"
	LevelIntermediate = "intermediate"
	LevelSenior       = "senior"
	LevelExpert       = "expert"
)

type BrokerProfile struct {
	ID                string   `json:"id"`
	UserID            string   `json:"userId"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	CompanyName       string   `json:"companyName"`
	Specializations   []string `json:"specializations"`
	ExperienceLevel   string   `json:"experienceLevel"`
	YearsOfExperience int      `json:"yearsOfExperience"`
	AverageRating     float64  `json:"averageRating"`
	SuccessRate       float64  `json:"successRate"`
	IsVerified        bool     `json:"isVerified"`
	IsActive          bool     `json:"isActive"`
}

// IsTestAccount flags seeded test and demo brokers by their email address.
func (b BrokerProfile) IsTestAccount() bool {
	email := strings.ToLower(b.Email)
	return strings.Contains(email, "test") || strings.Contains(email, "demo")
}

func (b BrokerProfile) Eligible() bool {
	return b.IsActive && b.IsVerified && !b.IsTestAccount()
}

type MatchResult struct {
	BrokerID        string             `json:"brokerId"`
	Score           float64            `json:"matchScore"`
	BrokerName      string             `json:"brokerName"`
	CompanyName     string             `json:"companyName"`
	ExperienceLevel string             `json:"experienceLevel"`
	AverageRating   float64            `json:"averageRating"`
	Specializations []string           `json:"specializations"`
	Breakdown       map[string]float64 `json:"breakdown,omitempty"`
}
