package matching

import (
	"testing"

	"broker-match-workers/internal/models"
	"broker-match-workers/internal/quiz"

	"github.com/stretchr/testify/assert"
)

func TestExtractSignals_ByTopic(t *testing.T) {
	responses := []models.ResponseRecord{
		{Order: 1, Topic: quiz.TopicGoals, Answer: models.NewChoiceAnswer("retirement")},
		{Order: 2, Topic: quiz.TopicRisk, Answer: models.NewScaleAnswer(4)},
		{Order: 3, Topic: quiz.TopicExperience, Answer: models.NewMultiChoiceAnswer([]string{"advanced", "expert"})},
		{Order: 5, Topic: quiz.TopicTax, Answer: models.NewMultiChoiceAnswer([]string{"tax_planning", "budgeting"})},
		{Order: 6, Topic: quiz.TopicCommunication, Answer: models.NewChoiceAnswer("charts")},
		{Order: 7, Topic: quiz.TopicAuthority, Answer: models.NewScaleAnswer(2)},
		{Order: 8, Topic: quiz.TopicEstate, Answer: models.NewChoiceAnswer("tax_planning")},
		{Order: 9, Topic: quiz.TopicPast, Answer: models.NewTextAnswer("sold too early")},
	}

	s := ExtractSignals(responses)
	assert.Equal(t, "retirement", s.Goal)
	assert.Equal(t, "moderate_aggressive", s.Risk)
	assert.Equal(t, "advanced", s.Experience)
	assert.Equal(t, []string{"tax_planning", "budgeting"}, s.Services)
	assert.Equal(t, "charts", s.Communication)
	assert.Equal(t, []string{NoPreference}, s.Certifications)
	assert.Empty(t, s.Amount)
	assert.Empty(t, s.Sectors)
	assert.Equal(t, 6, s.Answered())
}

func TestExtractSignals_LegacyQuestionTexts(t *testing.T) {
	responses := []models.ResponseRecord{
		{Order: 1, QuestionText: "What is your primary investment goal?", Answer: models.NewTextAnswer("income")},
		{Order: 2, QuestionText: "What is your risk tolerance level?", Answer: models.NewTextAnswer("conservative")},
		{Order: 3, QuestionText: "Which services are most important to you?", Answer: models.NewMultiChoiceAnswer([]string{"insurance"})},
		{Order: 4, QuestionText: "What is your approximate investment amount?", Answer: models.NewTextAnswer("100k_500k")},
		{Order: 5, QuestionText: "Which sectors are you most interested in investing?", Answer: models.NewMultiChoiceAnswer([]string{"energy", "energy", "tech"})},
		{Order: 6, QuestionText: "Do you have any specific broker certification preferences?", Answer: models.NewMultiChoiceAnswer([]string{"CFP"})},
		{Order: 7, QuestionText: "Something unrelated?", Answer: models.NewTextAnswer("ignored")},
	}

	s := ExtractSignals(responses)
	assert.Equal(t, "income", s.Goal)
	assert.Equal(t, "conservative", s.Risk)
	assert.Equal(t, []string{"insurance"}, s.Services)
	assert.Equal(t, "100k_500k", s.Amount)
	assert.Equal(t, []string{"energy", "tech"}, s.Sectors)
	assert.Equal(t, []string{"CFP"}, s.Certifications)
	assert.Empty(t, s.Experience)
}

func TestRiskSignal_Clamps(t *testing.T) {
	assert.Equal(t, "conservative", riskSignal(models.NewScaleAnswer(1)))
	assert.Equal(t, "conservative", riskSignal(models.NewScaleAnswer(0)))
	assert.Equal(t, "moderate", riskSignal(models.NewScaleAnswer(3)))
	assert.Equal(t, "aggressive", riskSignal(models.NewScaleAnswer(9)))
	assert.Equal(t, "moderate", riskSignal(models.NewChoiceAnswer("moderate")))
}

func TestCertificationSignal(t *testing.T) {
	assert.Equal(t, []string{CredentialPreference}, certificationSignal(models.NewScaleAnswer(5)))
	assert.Equal(t, []string{NoPreference}, certificationSignal(models.NewBooleanAnswer(false)))
	assert.Equal(t, []string{CredentialPreference}, certificationSignal(models.NewBooleanAnswer(true)))
}
