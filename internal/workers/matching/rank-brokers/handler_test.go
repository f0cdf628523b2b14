// internal/workers/matching/rank-brokers/handler_test.go
package rankbrokers

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/common/errors"
	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/common/validation"
	"broker-match-workers/internal/models"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/repository"
	"broker-match-workers/internal/workers/workerstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type recordingNotifier struct {
	userID  string
	matches []models.MatchResult
	err     error
}

func (n *recordingNotifier) PublishMatches(_ context.Context, userID string, matches []models.MatchResult) (string, error) {
	n.userID = userID
	n.matches = matches
	if n.err != nil {
		return "", n.err
	}
	return "msg-42", nil
}

type recordingScores struct{ scores []float64 }

func (r *recordingScores) RecordTopScore(_ context.Context, score float64) {
	r.scores = append(r.scores, score)
}

type failingRanker struct{}

func (failingRanker) Rank(context.Context, string, int) ([]models.MatchResult, error) {
	return nil, stderrors.New("broker directory unavailable")
}

func seedRetirementAnswers(t *testing.T, f *workerstest.Fixture, userID string) {
	t.Helper()
	require.NoError(t, f.Responses.SaveResponses(context.Background(), userID, []models.ResponseRecord{
		{Order: 1, Topic: quiz.TopicGoals, Format: models.FormatSingleChoice, Answer: models.NewChoiceAnswer("retirement")},
		{Order: 2, Topic: quiz.TopicRisk, Format: models.FormatScale, Answer: models.NewScaleAnswer(2)},
	}))
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, DefaultTopN: 10}
}

func setupMatchRepository(t *testing.T) (*repository.MatchRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewMatchRepository(database.NewPostgresFromDB(db)), mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Ranks(t *testing.T) {
	tests := []struct {
		name           string
		topN           int
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "default top n returns every eligible broker",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 3, output.Count)
				assert.Equal(t, "b-retire", output.Matches[0].BrokerID)
			},
		},
		{
			name: "explicit top n truncates",
			topN: 1,
			validateOutput: func(t *testing.T, output *Output) {
				require.Equal(t, 1, output.Count)
				assert.Equal(t, "b-retire", output.Matches[0].BrokerID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := workerstest.NewFixture(t)
			seedRetirementAnswers(t, f, "u-1")
			scores := &recordingScores{}
			handler := NewHandler(createTestConfig(), Dependencies{
				Ranker: f.Engine,
				Scores: scores,
				Logger: logger.NewTestLogger(t),
			})

			output, err := handler.Execute(context.Background(), &Input{UserID: "u-1", TopN: tt.topN})
			require.NoError(t, err)
			assert.Equal(t, "u-1", output.UserID)
			assert.Len(t, output.Matches, output.Count)
			for i := 1; i < len(output.Matches); i++ {
				assert.GreaterOrEqual(t, output.Matches[i-1].Score, output.Matches[i].Score)
			}
			require.Len(t, scores.scores, 1)
			assert.Equal(t, output.Matches[0].Score, scores.scores[0])
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_NoAnswers(t *testing.T) {
	f := workerstest.NewFixture(t)
	notifier := &recordingNotifier{}
	handler := NewHandler(createTestConfig(), Dependencies{Ranker: f.Engine, Notifier: notifier})

	output, err := handler.Execute(context.Background(), &Input{UserID: "u-2", Notify: true})
	require.NoError(t, err)
	assert.Zero(t, output.Count)
	assert.NotNil(t, output.Matches)
	assert.Empty(t, notifier.userID)
}

func TestHandler_Execute_PersistsAndNotifies(t *testing.T) {
	f := workerstest.NewFixture(t)
	seedRetirementAnswers(t, f, "u-1")
	matches, mock := setupMatchRepository(t)
	notifier := &recordingNotifier{}

	handler := NewHandler(createTestConfig(), Dependencies{
		Ranker:   f.Engine,
		Matches:  matches,
		Notifier: notifier,
		Logger:   logger.NewTestLogger(t),
	})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO broker_matches").
		WithArgs(sqlmock.AnyArg(), "u-1", "b-retire", sqlmock.AnyArg(), repository.MatchStatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO broker_matches").
		WithArgs(sqlmock.AnyArg(), "u-1", sqlmock.AnyArg(), sqlmock.AnyArg(), repository.MatchStatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), &Input{UserID: "u-1", TopN: 2, Persist: true, Notify: true})
	require.NoError(t, err)

	assert.Equal(t, 2, output.Count)
	assert.Equal(t, 1, output.Persisted)
	assert.Equal(t, "msg-42", output.NotificationID)
	assert.Equal(t, "u-1", notifier.userID)
	assert.Equal(t, output.Matches, notifier.matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_OptionalCollaboratorsMissing(t *testing.T) {
	f := workerstest.NewFixture(t)
	seedRetirementAnswers(t, f, "u-1")
	handler := NewHandler(createTestConfig(), Dependencies{Ranker: f.Engine, Logger: logger.NewTestLogger(t)})

	output, err := handler.Execute(context.Background(), &Input{UserID: "u-1", Persist: true, Notify: true})
	require.NoError(t, err)
	assert.Zero(t, output.Persisted)
	assert.Empty(t, output.NotificationID)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("ranking failure", func(t *testing.T) {
		handler := NewHandler(createTestConfig(), Dependencies{Ranker: failingRanker{}})
		_, err := handler.Execute(context.Background(), &Input{UserID: "u-1"})

		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, errors.ErrCodeBrokerMatchingFailed, stdErr.Code)
		assert.True(t, stdErr.Retryable)
	})

	t.Run("persistence failure", func(t *testing.T) {
		f := workerstest.NewFixture(t)
		seedRetirementAnswers(t, f, "u-1")
		matches, mock := setupMatchRepository(t)
		handler := NewHandler(createTestConfig(), Dependencies{Ranker: f.Engine, Matches: matches})

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO broker_matches").WillReturnError(stderrors.New("deadlock detected"))
		mock.ExpectRollback()

		_, err := handler.Execute(context.Background(), &Input{UserID: "u-1", Persist: true})
		assert.ErrorIs(t, err, repository.ErrQueryFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("notification failure", func(t *testing.T) {
		f := workerstest.NewFixture(t)
		seedRetirementAnswers(t, f, "u-1")
		handler := NewHandler(createTestConfig(), Dependencies{
			Ranker:   f.Engine,
			Notifier: &recordingNotifier{err: stderrors.New("throttled")},
		})

		_, err := handler.Execute(context.Background(), &Input{UserID: "u-1", Notify: true})
		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	})
}

// ==========================
// Input Schema Tests
// ==========================

func TestGetInputSchema(t *testing.T) {
	tests := []struct {
		name  string
		vars  map[string]interface{}
		valid bool
	}{
		{name: "user only", vars: map[string]interface{}{"userId": "u-1"}, valid: true},
		{name: "all flags", vars: map[string]interface{}{"userId": "u-1", "topN": 5, "persist": true, "notify": false}, valid: true},
		{name: "zero top n", vars: map[string]interface{}{"userId": "u-1", "topN": 0}},
		{name: "fractional top n", vars: map[string]interface{}{"userId": "u-1", "topN": 2.5}},
		{name: "missing user", vars: map[string]interface{}{"topN": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validation.ValidateInput(tt.vars, GetInputSchema())
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, result.Error())
		})
	}
}
