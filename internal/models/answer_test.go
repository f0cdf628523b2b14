package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswer_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Answer
	}{
		{name: "tagged choice", input: `{"kind":"choice","choices":["retirement"]}`, expected: NewChoiceAnswer("retirement")},
		{name: "legacy string", input: `"I like charts"`, expected: NewTextAnswer("I like charts")},
		{name: "legacy list", input: `["tax_planning","budgeting"]`, expected: NewMultiChoiceAnswer([]string{"tax_planning", "budgeting"})},
		{name: "legacy number", input: `4`, expected: NewScaleAnswer(4)},
		{name: "legacy boolean", input: `true`, expected: NewBooleanAnswer(true)},
		{name: "null", input: `null`, expected: Answer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Answer
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.expected, a)
		})
	}
}

func TestAnswer_UnmarshalJSON_ObjectWithoutKind(t *testing.T) {
	var a Answer
	assert.Error(t, json.Unmarshal([]byte(`{"text":"x"}`), &a))
}

func TestAnswer_String(t *testing.T) {
	assert.Equal(t, "family, friends", NewMultiChoiceAnswer([]string{"family", "friends"}).String())
	assert.Equal(t, "3", NewScaleAnswer(3).String())
	assert.Equal(t, "no", NewBooleanAnswer(false).String())
	assert.Equal(t, "income", NewChoiceAnswer("income").Primary())
	assert.Empty(t, Answer{}.Primary())
}

func TestQuizSession_FocusAreasAndProgress(t *testing.T) {
	s := &QuizSession{CurrentSlot: 3, Status: StatusInProgress}

	assert.True(t, s.AddFocusArea("tax_optimization"))
	assert.False(t, s.AddFocusArea("tax_optimization"))
	assert.Equal(t, []string{"tax_optimization"}, s.FocusAreas)
	assert.InDelta(t, 30.0, s.Progress().CompletionPercentage, 1e-9)

	s.Status = StatusCompleted
	assert.Equal(t, TotalSlots, s.Progress().Current)
}

func TestQuizSession_ServedQuestionTexts(t *testing.T) {
	s := &QuizSession{
		Responses: []ResponseRecord{
			{Order: 1, QuestionText: "Q1"},
			{Order: 2, QuestionText: "Q2"},
		},
		CurrentQuestion: &Question{Text: "Q3"},
	}
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, s.ServedQuestionTexts())
}

func TestBrokerProfile_Eligible(t *testing.T) {
	b := BrokerProfile{IsActive: true, IsVerified: true, Email: "ann@acme.com"}
	assert.True(t, b.Eligible())

	b.Email = "Demo.Broker@acme.com"
	assert.False(t, b.Eligible())

	b = BrokerProfile{IsActive: true, IsVerified: false, Email: "bob@acme.com"}
	assert.False(t, b.Eligible())
}
