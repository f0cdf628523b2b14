package matching

import (
	"testing"

	"broker-match-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func createTestBroker(id, level string, specs ...string) models.BrokerProfile {
	return models.BrokerProfile{
		ID:              id,
		Name:            "Broker " + id,
		Email:           id + "@brokers.example.com",
		Specializations: specs,
		ExperienceLevel: level,
		IsActive:        true,
		IsVerified:      true,
	}
}

func TestCriteria_WeightsSumToOne(t *testing.T) {
	total := 0.0
	for _, c := range Criteria {
		total += c.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Len(t, Criteria, 9)
}

func TestScoreInvestmentGoals(t *testing.T) {
	broker := createTestBroker("b-1", models.LevelSenior, "Retirement_Planning", "wealth_management")

	assert.Equal(t, 0.5, scoreInvestmentGoals(broker, Signals{}))
	assert.Equal(t, 0.5, scoreInvestmentGoals(broker, Signals{Goal: "retirement"}))
	assert.Equal(t, 0.5, scoreInvestmentGoals(broker, Signals{Goal: "wealth_growth"}))
	assert.Equal(t, 0.0, scoreInvestmentGoals(broker, Signals{Goal: "income"}))
	assert.Equal(t, 0.7, scoreInvestmentGoals(broker, Signals{Goal: "buy_a_boat"}))

	full := createTestBroker("b-2", models.LevelSenior, "senior_retirement_planning", "financial_planning")
	assert.Equal(t, 1.0, scoreInvestmentGoals(full, Signals{Goal: "Retirement"}))
}

func TestScoreRiskTolerance(t *testing.T) {
	tests := []struct {
		level    string
		risk     string
		expected float64
	}{
		{level: models.LevelJunior, risk: "conservative", expected: 1.0},
		{level: models.LevelJunior, risk: "aggressive", expected: 0.3},
		{level: models.LevelIntermediate, risk: "moderate_aggressive", expected: 1.0},
		{level: models.LevelExpert, risk: "moderate", expected: 1.0},
		{level: models.LevelExpert, risk: "conservative", expected: 0.3},
		{level: "", risk: "moderate", expected: 1.0},
		{level: "", risk: "aggressive", expected: 0.3},
		{level: models.LevelSenior, risk: "yolo", expected: 0.3},
		{level: models.LevelSenior, risk: "", expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.risk, func(t *testing.T) {
			broker := createTestBroker("b", tt.level)
			assert.Equal(t, tt.expected, scoreRiskTolerance(broker, Signals{Risk: tt.risk}))
		})
	}
}

func TestScoreExperienceLevel(t *testing.T) {
	tests := []struct {
		experience string
		level      string
		expected   float64
	}{
		{experience: "none", level: models.LevelJunior, expected: 1.0},
		{experience: "none", level: models.LevelIntermediate, expected: 0.8},
		{experience: "none", level: models.LevelExpert, expected: 0.3},
		{experience: "expert", level: models.LevelExpert, expected: 1.0},
		{experience: "advanced", level: models.LevelExpert, expected: 0.8},
		{experience: "beginner", level: models.LevelJunior, expected: 0.3},
		{experience: "intermediate", level: "", expected: 0.8},
		{experience: "unknown", level: models.LevelSenior, expected: 0.3},
		{experience: "", level: models.LevelSenior, expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.experience+"/"+tt.level, func(t *testing.T) {
			broker := createTestBroker("b", tt.level)
			assert.Equal(t, tt.expected, scoreExperienceLevel(broker, Signals{Experience: tt.experience}))
		})
	}
}

func TestScoreServicesAndSectors(t *testing.T) {
	broker := createTestBroker("b", models.LevelSenior, "tax_strategies", "estate_planning", "technology_stocks")

	assert.Equal(t, 0.5, scoreServiceAlignment(broker, Signals{}))
	assert.Equal(t, 1.0, scoreServiceAlignment(broker, Signals{Services: []string{"tax_planning", "estate_planning"}}))
	assert.InDelta(t, 1.0/3, scoreServiceAlignment(broker, Signals{Services: []string{"tax_planning", "insurance", "budgeting"}}), 1e-9)

	assert.Equal(t, 0.5, scoreSectorInterests(broker, Signals{}))
	assert.Equal(t, 0.5, scoreSectorInterests(broker, Signals{Sectors: []string{"Technology", "energy"}}))

	bare := createTestBroker("bare", models.LevelSenior)
	assert.Equal(t, 0.0, scoreServiceAlignment(bare, Signals{Services: []string{"tax_planning"}}))
	assert.Equal(t, 0.0, scoreSectorInterests(bare, Signals{Sectors: []string{"energy"}}))
	assert.Equal(t, 0.0, scoreInvestmentGoals(bare, Signals{Goal: "income"}))
}

func TestScoreInvestmentAmount(t *testing.T) {
	tests := []struct {
		amount   string
		level    string
		expected float64
	}{
		{amount: "500k_plus", level: models.LevelExpert, expected: 1.0},
		{amount: "50k_100k", level: models.LevelExpert, expected: 0.7},
		{amount: "10k_50k", level: models.LevelExpert, expected: 0.4},
		{amount: "less_10k", level: models.LevelJunior, expected: 1.0},
		{amount: "less_10k", level: models.LevelIntermediate, expected: 0.4},
		{amount: "", level: models.LevelIntermediate, expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.amount+"/"+tt.level, func(t *testing.T) {
			broker := createTestBroker("b", tt.level)
			assert.Equal(t, tt.expected, scoreInvestmentAmount(broker, Signals{Amount: tt.amount}))
		})
	}
}

func TestScoreFlatCriteria(t *testing.T) {
	broker := createTestBroker("b", models.LevelSenior)

	assert.Equal(t, 0.8, scoreCommunicationStyle(broker, Signals{}))
	assert.Equal(t, 0.9, scoreCommunicationStyle(broker, Signals{Communication: "email"}))

	assert.Equal(t, 0.8, scoreCertification(broker, Signals{}))
	assert.Equal(t, 1.0, scoreCertification(broker, Signals{Certifications: []string{"CFP", "No_Preference"}}))
	assert.Equal(t, 0.7, scoreCertification(broker, Signals{Certifications: []string{"CFA"}}))
}

func TestScoreBrokerPerformance(t *testing.T) {
	broker := createTestBroker("b", models.LevelSenior)
	broker.AverageRating = 4.5
	broker.SuccessRate = 0.9
	assert.InDelta(t, 0.90, scoreBrokerPerformance(broker, Signals{}), 1e-9)

	unrated := createTestBroker("u", models.LevelSenior)
	assert.InDelta(t, 0.5, scoreBrokerPerformance(unrated, Signals{}), 1e-9)
}

func TestScore(t *testing.T) {
	t.Run("strong fit", func(t *testing.T) {
		broker := createTestBroker("b-1", models.LevelExpert,
			"retirement_planning", "financial_planning", "tax_strategies", "technology")
		broker.AverageRating = 4.5
		broker.SuccessRate = 0.9

		signals := Signals{
			Goal:           "retirement",
			Risk:           "aggressive",
			Experience:     "expert",
			Services:       []string{"tax_planning", "insurance"},
			Amount:         "500k_plus",
			Sectors:        []string{"technology", "healthcare"},
			Communication:  "charts",
			Certifications: []string{NoPreference},
		}
		assert.InDelta(t, 0.865, Score(broker, signals), 1e-9)

		breakdown := Breakdown(broker, signals)
		assert.Len(t, breakdown, 9)
		assert.Equal(t, 0.5, breakdown[CriterionServiceAlignment])
		assert.Equal(t, 1.0, breakdown[CriterionInvestmentGoals])
	})

	t.Run("nothing answered is neutral", func(t *testing.T) {
		assert.InDelta(t, 0.53, Score(createTestBroker("b", ""), Signals{}), 1e-9)
	})

	t.Run("always within bounds and pure", func(t *testing.T) {
		signals := Signals{Goal: "income", Risk: "moderate", Experience: "beginner", Amount: "10k_50k"}
		for _, level := range []string{"", models.LevelJunior, models.LevelIntermediate, models.LevelSenior, models.LevelExpert} {
			broker := createTestBroker("b", level, "income_strategies")
			broker.AverageRating = 5
			broker.SuccessRate = 1
			first := Score(broker, signals)
			assert.GreaterOrEqual(t, first, 0.0)
			assert.LessOrEqual(t, first, 1.0)
			assert.Equal(t, first, Score(broker, signals))
		}
	})
}
