// internal/workers/quiz/generate-quiz-insights/handler_test.go
package generatequizinsights

import (
	"context"
	"testing"
	"time"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/models"
	"broker-match-workers/internal/workers/workerstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) (*Handler, *workerstest.Fixture) {
	f := workerstest.NewFixture(t)
	return NewHandler(&Config{Timeout: 5 * time.Second}, f.Service, logger.NewTestLogger(t)), f
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		answers        int
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:    "in progress session",
			answers: 2,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "in_progress", output.CompletionStatus)
				assert.Equal(t, 2, output.TotalResponses)
				assert.Equal(t, 0.58, output.ConfidenceScore)
				assert.Equal(t, "u-1", output.UserID)
				assert.NotEmpty(t, output.Insights)
				assert.NotEmpty(t, output.Recommendations)
			},
		},
		{
			name:    "completed session",
			answers: models.TotalSlots,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "completed", output.CompletionStatus)
				assert.Equal(t, models.TotalSlots, output.TotalResponses)
				assert.Equal(t, 0.90, output.ConfidenceScore)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, f := createTestHandler(t)
			ctx := context.Background()

			step, err := f.Service.Start(ctx, "u-1")
			require.NoError(t, err)
			sessionID := step.Session.ID
			question := step.Question
			for i := 0; i < tt.answers; i++ {
				step, err = f.Service.Submit(ctx, sessionID, workerstest.AnswerFor(question))
				require.NoError(t, err)
				question = step.Question
			}

			output, err := handler.Execute(ctx, &Input{SessionID: sessionID})
			require.NoError(t, err)
			assert.Equal(t, sessionID, output.SessionID)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_UnknownSession(t *testing.T) {
	handler, _ := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{SessionID: "expired"})
	require.NoError(t, err)
	assert.Equal(t, "no_data", output.CompletionStatus)
	assert.Zero(t, output.TotalResponses)
	assert.Empty(t, output.Insights)
}
