// Package matching scores brokers against the signals read off a user's quiz
// answers and ranks them.
package matching

import (
	"strings"

	"broker-match-workers/internal/models"
)

const (
	CriterionInvestmentGoals   = "investment_goals"
	CriterionRiskTolerance     = "risk_tolerance"
	CriterionExperienceLevel   = "experience_level"
	CriterionServiceAlignment  = "service_alignment"
	CriterionInvestmentAmount  = "investment_amount"
	CriterionSectorInterests   = "sector_interests"
	CriterionCommunication     = "communication_style"
	CriterionCertification     = "certification_preference"
	CriterionBrokerPerformance = "broker_performance"
)

const neutral = 0.5

// Criterion is one weighted scoring dimension.
type Criterion struct {
	Name   string
	Weight float64
	Score  func(b models.BrokerProfile, s Signals) float64
}

// Criteria lists the nine criteria in evaluation order. Weights sum to 1.0.
var Criteria = []Criterion{
	{Name: CriterionInvestmentGoals, Weight: 0.20, Score: scoreInvestmentGoals},
	{Name: CriterionRiskTolerance, Weight: 0.15, Score: scoreRiskTolerance},
	{Name: CriterionExperienceLevel, Weight: 0.15, Score: scoreExperienceLevel},
	{Name: CriterionServiceAlignment, Weight: 0.15, Score: scoreServiceAlignment},
	{Name: CriterionInvestmentAmount, Weight: 0.10, Score: scoreInvestmentAmount},
	{Name: CriterionSectorInterests, Weight: 0.10, Score: scoreSectorInterests},
	{Name: CriterionCommunication, Weight: 0.05, Score: scoreCommunicationStyle},
	{Name: CriterionCertification, Weight: 0.05, Score: scoreCertification},
	{Name: CriterionBrokerPerformance, Weight: 0.05, Score: scoreBrokerPerformance},
}

var goalSpecializations = map[string][]string{
	"retirement":    {"retirement_planning", "financial_planning"},
	"wealth_growth": {"investment_management", "wealth_management"},
	"income":        {"income_strategies", "dividend_investing"},
	"education":     {"education_planning", "529_plans"},
	"home_purchase": {"real_estate_planning", "savings_strategies"},
}

// riskCompatibility is symmetric: each style is compatible with its neighbours.
var riskCompatibility = map[string][]string{
	"conservative":          {"conservative", "moderate_conservative"},
	"moderate_conservative": {"conservative", "moderate_conservative", "moderate"},
	"moderate":              {"moderate_conservative", "moderate", "moderate_aggressive"},
	"moderate_aggressive":   {"moderate", "moderate_aggressive", "aggressive"},
	"aggressive":            {"moderate_aggressive", "aggressive"},
}

var levelRiskStyles = map[string][]string{
	models.LevelJunior:       {"conservative", "moderate_conservative"},
	models.LevelIntermediate: {"moderate_conservative", "moderate"},
	models.LevelSenior:       {"moderate", "moderate_aggressive"},
	models.LevelExpert:       {"moderate_aggressive", "aggressive"},
}

var experienceCompatibility = map[string][]string{
	"none":         {models.LevelJunior, models.LevelIntermediate},
	"beginner":     {models.LevelIntermediate, models.LevelSenior},
	"intermediate": {models.LevelIntermediate, models.LevelSenior, models.LevelExpert},
	"advanced":     {models.LevelSenior, models.LevelExpert},
	"expert":       {models.LevelExpert},
}

var serviceSpecializations = map[string]string{
	"financial_planning":    "financial_planning",
	"tax_planning":          "tax_strategies",
	"estate_planning":       "estate_planning",
	"retirement_planning":   "retirement_planning",
	"education_planning":    "education_planning",
	"insurance":             "insurance_planning",
	"investment_management": "investment_management",
	"budgeting":             "budgeting",
}

var amountMinimums = map[string]float64{
	"less_10k":  0,
	"10k_50k":   10000,
	"50k_100k":  50000,
	"100k_500k": 100000,
	"500k_plus": 500000,
}

var levelMinimums = map[string]float64{
	models.LevelJunior:       0,
	models.LevelIntermediate: 10000,
	models.LevelSenior:       50000,
	models.LevelExpert:       100000,
}

func lowerSpecializations(b models.BrokerProfile) []string {
	out := make([]string, 0, len(b.Specializations))
	for _, s := range b.Specializations {
		out = append(out, strings.ToLower(s))
	}
	return out
}

// hasSpecialization reports whether any broker specialization contains want.
func hasSpecialization(specs []string, want string) bool {
	want = strings.ToLower(want)
	for _, s := range specs {
		if strings.Contains(s, want) {
			return true
		}
	}
	return false
}

func fraction(matched, total int) float64 {
	if total == 0 {
		return neutral
	}
	f := float64(matched) / float64(total)
	if f > 1 {
		return 1
	}
	return f
}

func scoreInvestmentGoals(b models.BrokerProfile, s Signals) float64 {
	if s.Goal == "" {
		return neutral
	}
	required, ok := goalSpecializations[strings.ToLower(s.Goal)]
	if !ok {
		return 0.7
	}
	specs := lowerSpecializations(b)
	matched := 0
	for _, r := range required {
		if hasSpecialization(specs, r) {
			matched++
		}
	}
	return fraction(matched, len(required))
}

func scoreRiskTolerance(b models.BrokerProfile, s Signals) float64 {
	if s.Risk == "" {
		return neutral
	}
	risk := strings.ToLower(s.Risk)
	compatible, ok := riskCompatibility[risk]
	if !ok {
		compatible = []string{risk}
	}
	styles, ok := levelRiskStyles[strings.ToLower(b.ExperienceLevel)]
	if !ok {
		styles = []string{"moderate"}
	}
	for _, style := range styles {
		for _, c := range compatible {
			if style == c {
				return 1.0
			}
		}
	}
	return 0.3
}

func scoreExperienceLevel(b models.BrokerProfile, s Signals) float64 {
	if s.Experience == "" {
		return neutral
	}
	experience := strings.ToLower(s.Experience)
	level := strings.ToLower(b.ExperienceLevel)
	if _, ok := levelMinimums[level]; !ok {
		level = models.LevelIntermediate
	}

	for _, compatible := range experienceCompatibility[experience] {
		if compatible != level {
			continue
		}
		if (experience == "none" && level == models.LevelJunior) || (experience == "expert" && level == models.LevelExpert) {
			return 1.0
		}
		return 0.8
	}
	return 0.3
}

func scoreServiceAlignment(b models.BrokerProfile, s Signals) float64 {
	if len(s.Services) == 0 {
		return neutral
	}
	specs := lowerSpecializations(b)
	matched := 0
	for _, service := range s.Services {
		want, ok := serviceSpecializations[service]
		if !ok {
			want = service
		}
		if hasSpecialization(specs, want) {
			matched++
		}
	}
	return fraction(matched, len(s.Services))
}

func scoreInvestmentAmount(b models.BrokerProfile, s Signals) float64 {
	if s.Amount == "" {
		return neutral
	}
	userMin := amountMinimums[strings.ToLower(s.Amount)]
	brokerMin := levelMinimums[strings.ToLower(b.ExperienceLevel)]
	switch {
	case userMin >= brokerMin:
		return 1.0
	case userMin >= brokerMin*0.5:
		return 0.7
	default:
		return 0.4
	}
}

func scoreSectorInterests(b models.BrokerProfile, s Signals) float64 {
	if len(s.Sectors) == 0 {
		return neutral
	}
	specs := lowerSpecializations(b)
	matched := 0
	for _, sector := range s.Sectors {
		if hasSpecialization(specs, sector) {
			matched++
		}
	}
	return fraction(matched, len(s.Sectors))
}

// Brokers are assumed to accommodate any communication style.
func scoreCommunicationStyle(_ models.BrokerProfile, s Signals) float64 {
	if s.Communication == "" {
		return 0.8
	}
	return 0.9
}

// Certifications are not modeled on brokers, so any stated preference scores
// a flat 0.7.
func scoreCertification(_ models.BrokerProfile, s Signals) float64 {
	if len(s.Certifications) == 0 {
		return 0.8
	}
	for _, c := range s.Certifications {
		if strings.ToLower(c) == NoPreference {
			return 1.0
		}
	}
	return 0.7
}

func scoreBrokerPerformance(b models.BrokerProfile, _ Signals) float64 {
	rating := neutral
	if b.AverageRating > 0 {
		rating = b.AverageRating / 5
	}
	success := neutral
	if b.SuccessRate > 0 {
		success = b.SuccessRate
	}
	return rating*0.7 + success*0.3
}

// Score is the weighted sum of all criteria, capped at 1.0.
func Score(b models.BrokerProfile, s Signals) float64 {
	total := 0.0
	for _, c := range Criteria {
		total += c.Score(b, s) * c.Weight
	}
	if total > 1 {
		return 1
	}
	return total
}

// Breakdown returns the unweighted score of every criterion.
func Breakdown(b models.BrokerProfile, s Signals) map[string]float64 {
	out := make(map[string]float64, len(Criteria))
	for _, c := range Criteria {
		out[c.Name] = c.Score(b, s)
	}
	return out
}
