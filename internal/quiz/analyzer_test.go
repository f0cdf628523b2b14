package quiz

import (
	"testing"

	"broker-match-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Traits
	}{
		{
			name:     "no keywords gives defaults",
			text:     "I like the beach",
			expected: DefaultTraits(),
		},
		{
			name:     "social beats analytical in rule order",
			text:     "I research with my family",
			expected: Traits{DecisionStyle: DecisionSocial, RiskLevel: RiskModerate, CommunicationStyle: CommunicationMixed},
		},
		{
			name:     "conservative beats aggressive in rule order",
			text:     "Safe growth please",
			expected: Traits{DecisionStyle: DecisionBalanced, RiskLevel: RiskConservative, CommunicationStyle: CommunicationMixed},
		},
		{
			name:     "all three traits",
			text:     "GUT feeling, high returns, and charts",
			expected: Traits{DecisionStyle: DecisionIntuitive, RiskLevel: RiskAggressive, CommunicationStyle: CommunicationVisual},
		},
		{
			name:     "personal communication",
			text:     "a conversation over coffee",
			expected: Traits{DecisionStyle: DecisionBalanced, RiskLevel: RiskModerate, CommunicationStyle: CommunicationPersonal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Analyze(tt.text))
		})
	}
}

func TestAnalyzeAll_FirstResponseFixesTrait(t *testing.T) {
	traits := AnalyzeAll([]string{
		"I want something safe",
		"I love high growth opportunity",
		"Let's talk it over in a meeting",
		"charts are nice too",
	})
	assert.Equal(t, RiskConservative, traits.RiskLevel)
	assert.Equal(t, CommunicationPersonal, traits.CommunicationStyle)
	assert.Equal(t, DecisionBalanced, traits.DecisionStyle)

	assert.Equal(t, DefaultTraits(), AnalyzeAll(nil))
}

func TestAnalyzeResponses_UsesAnswerRendering(t *testing.T) {
	responses := []models.ResponseRecord{
		{Order: 1, Answer: models.NewChoiceAnswer("wealth_growth")},
		{Order: 2, Answer: models.NewMultiChoiceAnswer([]string{"friends", "experts"})},
		{Order: 3, Answer: models.NewScaleAnswer(4)},
	}
	traits := AnalyzeResponses(responses)
	assert.Equal(t, DecisionSocial, traits.DecisionStyle)
	assert.Equal(t, RiskAggressive, traits.RiskLevel)
}

func TestResponseInsights(t *testing.T) {
	t.Run("one insight per group", func(t *testing.T) {
		insights := ResponseInsights("I'm conservative but like growth, and I research carefully before asking friends")
		require.Len(t, insights, 3)

		assert.Equal(t, "risk_profile", insights[0].Type)
		assert.Equal(t, "User shows preference for conservative investment approaches", insights[0].Text)
		assert.Equal(t, "decision_style", insights[1].Type)
		assert.Contains(t, insights[1].Text, "Thorough Researcher")
		assert.Equal(t, "social_influence", insights[2].Type)

		for _, in := range insights {
			assert.Equal(t, models.SourcePatternAnalysis, in.Source)
		}
	})

	t.Run("capacity", func(t *testing.T) {
		insights := ResponseInsights("About 500K to invest")
		require.Len(t, insights, 1)
		assert.Equal(t, "investment_capacity", insights[0].Type)
		assert.Equal(t, 0.9, insights[0].Confidence)
	})

	t.Run("nothing matches", func(t *testing.T) {
		assert.Empty(t, ResponseInsights("blue"))
	})
}

func TestFocusAreasFor(t *testing.T) {
	assert.Equal(t, []string{FocusRetirement}, FocusAreasFor("Build Retirement fund"))
	assert.Equal(t, []string{FocusRetirement, FocusTax, FocusEstate}, FocusAreasFor("retirement, taxes and my estate"))
	assert.Empty(t, FocusAreasFor("growth"))
}
