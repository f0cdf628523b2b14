package quiz

import (
	"context"
	"fmt"
	"strings"

	"broker-match-workers/internal/models"
)

type fallbackEntry struct {
	Text    string
	Options []models.QuestionOption
	Scale   *models.ScaleOptions
}

func opts(pairs ...string) []models.QuestionOption {
	out := make([]models.QuestionOption, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.QuestionOption{Value: pairs[i], Label: pairs[i+1]})
	}
	return out
}

var fallbackQuestions = map[string]fallbackEntry{
	TopicGoals: {
		Text: "What's your main financial goal for the next 10 years?",
		Options: opts(
			"retirement", "Build retirement fund",
			"wealth_growth", "Grow my wealth",
			"income", "Generate income",
			"education", "Save for education",
		),
	},
	TopicRisk: {
		Text:  "How do you feel about investment ups and downs?",
		Scale: &models.ScaleOptions{Min: 1, Max: 5, MinLabel: "Very worried", MaxLabel: "Totally fine"},
	},
	TopicExperience: {
		Text: "How would you describe your investment experience?",
		Options: opts(
			"beginner", "Just getting started",
			"intermediate", "Some experience",
			"advanced", "Very experienced",
			"expert", "Professional level",
		),
	},
	TopicDecision: {
		Text: "When making big financial decisions, you usually:",
		Options: opts(
			"research", "Research extensively first",
			"intuition", "Go with my gut feeling",
			"friends_family", "Ask friends and family",
			"quick", "Decide quickly",
		),
	},
	TopicSocial: {
		Text: "Who influences your financial decisions most?",
		Options: opts(
			"family", "Family members",
			"friends", "Friends and peers",
			"experts", "Financial experts",
			"myself", "I decide myself",
		),
	},
	TopicCommunication: {
		Text: "How do you prefer to learn about investments?",
		Options: opts(
			"charts", "Charts and graphs",
			"conversation", "Talking it through",
			"reports", "Written reports",
			"videos", "Videos and tutorials",
		),
	},
	TopicAuthority: {
		Text:  "How important are professional credentials to you?",
		Scale: &models.ScaleOptions{Min: 1, Max: 5, MinLabel: "Not important", MaxLabel: "Very important"},
	},
	TopicAnxiety: {
		Text: "What worries you most about investing?",
		Options: opts(
			"losing_money", "Losing money",
			"bad_timing", "Bad timing",
			"wrong_choice", "Making the wrong choice",
			"market_crash", "A market crash",
		),
	},
	TopicPast: {
		Text: "What's one financial lesson you learned the hard way?",
	},
	TopicFuture: {
		Text: "Describe your ideal financial future in one sentence.",
	},
	TopicRetirement: {
		Text: "Which retirement services matter most to you?",
		Options: opts(
			"retirement_planning", "Retirement income planning",
			"financial_planning", "Overall financial planning",
			"investment_management", "Managing my investments",
			"insurance", "Insurance and protection",
		),
	},
	TopicTax: {
		Text: "Which tax planning services would help you most?",
		Options: opts(
			"tax_planning", "Reducing my tax bill",
			"retirement_planning", "Tax-advantaged retirement accounts",
			"estate_planning", "Passing on wealth efficiently",
			"budgeting", "Planning around tax deadlines",
		),
	},
	TopicEstate: {
		Text: "What matters most to you in estate planning?",
		Options: opts(
			"estate_planning", "A clear estate plan",
			"insurance", "Protecting my family",
			"tax_planning", "Minimizing estate taxes",
			"financial_planning", "Organizing my finances",
		),
	},
}

var DefaultScale = models.ScaleOptions{Min: 1, Max: 5, MinLabel: "Strongly Disagree", MaxLabel: "Strongly Agree"}

var importanceScale = models.ScaleOptions{Min: 1, Max: 5, MinLabel: "Not important", MaxLabel: "Very important"}

var genericOptions = opts(
	"very_important", "Very important",
	"somewhat_important", "Somewhat important",
	"not_sure", "Not sure yet",
	"not_important", "Not important",
)

var booleanOptions = opts("yes", "Yes", "no", "No")

// FallbackQuestion renders a slot from the static question table.
func FallbackQuestion(slot models.QuestionSlot) *models.Question {
	entry, known := fallbackQuestions[slot.Topic]
	q := &models.Question{
		Format:   slot.Format,
		Order:    slot.Order,
		Topic:    slot.Topic,
		Category: slot.Category,
	}

	switch slot.Format {
	case models.FormatText:
		if known && len(entry.Options) == 0 && entry.Scale == nil {
			q.Text = entry.Text
		} else {
			q.Text = fmt.Sprintf("Tell us about your %s.", strings.ToLower(slot.Topic))
		}
	case models.FormatScale:
		if known && entry.Scale != nil {
			q.Text = entry.Text
			scale := *entry.Scale
			q.Scale = &scale
		} else {
			q.Text = fmt.Sprintf("How important is %s to you?", strings.ToLower(slot.Topic))
			scale := importanceScale
			q.Scale = &scale
		}
	case models.FormatBoolean:
		q.Text = fmt.Sprintf("Is %s a priority for you?", strings.ToLower(slot.Topic))
		q.Options = booleanOptions
	default:
		if known && len(entry.Options) > 0 {
			q.Text = entry.Text
			q.Options = entry.Options
		} else {
			q.Text = fmt.Sprintf("How do you feel about %s?", strings.ToLower(slot.Topic))
			q.Options = genericOptions
		}
	}
	return q
}

// FallbackGenerator serves the static table. It is the default question
// generator and never fails.
type FallbackGenerator struct{}

func (FallbackGenerator) GenerateQuestion(_ context.Context, req models.QuestionRequest) (*models.Question, error) {
	return FallbackQuestion(req.Slot), nil
}

// NoNarrator always declines, so final insights come from the rule-based fallbacks.
type NoNarrator struct{}

func (NoNarrator) NarrateInsights(context.Context, []models.ResponseRecord) (string, error) {
	return "", ErrNarratorUnavailable
}

var categoryImportance = map[models.Category]float64{
	models.CategoryFinancialGoals: 0.9,
	models.CategoryRiskTolerance:  0.95,
	models.CategoryExperience:     0.85,
	models.CategoryPreferences:    0.7,
	models.CategoryPsychology:     0.8,
}

var categoryPrinciples = map[models.Category]string{
	models.CategoryFinancialGoals: "Goal setting",
	models.CategoryRiskTolerance:  "Loss aversion",
	models.CategoryExperience:     "Overconfidence bias",
	models.CategoryPreferences:    "Choice architecture",
	models.CategoryPsychology:     "Behavioral finance",
}

var categoryMatchingValue = map[models.Category]string{
	models.CategoryFinancialGoals: "Aligns broker specializations with goals",
	models.CategoryRiskTolerance:  "Pairs you with brokers of compatible risk style",
	models.CategoryExperience:     "Matches broker seniority to your experience",
	models.CategoryPreferences:    "Finds brokers who work the way you like",
	models.CategoryPsychology:     "Improves long-term relationship fit",
}

// QuestionImportance weighs a slot by category, boosted when it serves an
// active focus area.
func QuestionImportance(slot models.QuestionSlot, focusAreas []string) float64 {
	importance, ok := categoryImportance[slot.Category]
	if !ok {
		importance = 0.7
	}
	if focusAreaForTopic(slot.Topic, focusAreas) != "" {
		importance += 0.05
	}
	if importance > 1 {
		importance = 1
	}
	return importance
}

func focusAreaForTopic(topic string, focusAreas []string) string {
	for _, at := range adaptiveTopics {
		if at.Topic != topic {
			continue
		}
		for _, a := range focusAreas {
			if a == at.FocusArea {
				return a
			}
		}
	}
	return ""
}

func adaptiveContext(slot models.QuestionSlot, focusAreas []string) *models.AdaptiveContext {
	focus := focusAreaForTopic(slot.Topic, focusAreas)
	reasoning := fmt.Sprintf("Core %s question for slot %d", strings.ToLower(string(slot.Category)), slot.Order)
	if focus != "" {
		reasoning = fmt.Sprintf("Added because earlier answers mentioned %s", strings.ReplaceAll(focus, "_", " "))
	} else if len(focusAreas) > 0 {
		focus = focusAreas[len(focusAreas)-1]
	}
	return &models.AdaptiveContext{
		FocusArea:           focus,
		Reasoning:           reasoning,
		Importance:          QuestionImportance(slot, focusAreas),
		PsychologyPrinciple: categoryPrinciples[slot.Category],
		MatchingValue:       categoryMatchingValue[slot.Category],
	}
}
