// internal/workers/quiz/start-quiz-session/handler_test.go
package startquizsession

import (
	"context"
	"testing"
	"time"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/models"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/workers/workerstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) (*Handler, *workerstest.Fixture) {
	f := workerstest.NewFixture(t)
	return NewHandler(&Config{Timeout: 5 * time.Second}, f.Service, logger.NewTestLogger(t)), f
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		setup          func(t *testing.T, f *workerstest.Fixture)
		expectedErr    error
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:   "fresh session",
			userID: "u-1",
			validateOutput: func(t *testing.T, output *Output) {
				assert.NotEmpty(t, output.SessionID)
				assert.Equal(t, "u-1", output.UserID)
				assert.Equal(t, string(models.StatusStarted), output.Status)
				require.NotNil(t, output.Question)
				assert.Equal(t, 1, output.Question.Order)
				assert.Equal(t, 1, output.Progress.Current)
				assert.Equal(t, models.TotalSlots, output.Progress.Total)
				assert.False(t, output.Completed)
				assert.Nil(t, output.Completion)
			},
		},
		{
			name:   "resumes from stored answers",
			userID: "u-2",
			setup: func(t *testing.T, f *workerstest.Fixture) {
				require.NoError(t, f.Responses.SaveResponses(context.Background(), "u-2", []models.ResponseRecord{
					{Order: 1, Topic: quiz.TopicGoals, Format: models.FormatSingleChoice, Answer: models.NewChoiceAnswer("retirement")},
					{Order: 2, Topic: quiz.TopicRisk, Format: models.FormatScale, Answer: models.NewScaleAnswer(3)},
				}))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, string(models.StatusInProgress), output.Status)
				require.NotNil(t, output.Question)
				assert.Equal(t, 3, output.Question.Order)
				assert.Equal(t, 3, output.Progress.Current)
			},
		},
		{
			name:        "unknown user",
			userID:      "ghost",
			expectedErr: quiz.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, f := createTestHandler(t)
			if tt.setup != nil {
				tt.setup(t, f)
			}

			output, err := handler.Execute(context.Background(), &Input{UserID: tt.userID})
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_ReturnsLiveSession(t *testing.T) {
	handler, _ := createTestHandler(t)
	ctx := context.Background()

	first, err := handler.Execute(ctx, &Input{UserID: "u-1"})
	require.NoError(t, err)
	second, err := handler.Execute(ctx, &Input{UserID: "u-1"})
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, first.Question.Text, second.Question.Text)
}

// ==========================
// Input Schema Tests
// ==========================

func TestGetInputSchema(t *testing.T) {
	schema := GetInputSchema()
	assert.Equal(t, []string{"userId"}, schema["required"])
}
