// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broker-match-workers/internal/common/config"
	"broker-match-workers/internal/common/database"
	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/matching"
	"broker-match-workers/internal/models"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/repository"
	"broker-match-workers/internal/workers/workerstest"
)

// Runs against the PostgreSQL and Redis named in configs/config.yaml.
// Set RUN_E2E=1 to enable.
func TestMain(m *testing.M) {
	if os.Getenv("RUN_E2E") == "" {
		os.Exit(0)
	}
	os.Exit(m.Run())
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS brokers (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	company_name TEXT,
	specializations TEXT[] NOT NULL DEFAULT '{}',
	experience_level TEXT,
	years_of_experience INT,
	average_rating DOUBLE PRECISION,
	success_rate DOUBLE PRECISION,
	is_verified BOOLEAN NOT NULL DEFAULT false,
	is_active BOOLEAN NOT NULL DEFAULT false
);
CREATE TABLE IF NOT EXISTS quiz_responses (
	user_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	question_order INT NOT NULL,
	topic TEXT NOT NULL,
	format TEXT NOT NULL,
	question_text TEXT NOT NULL,
	answer JSONB NOT NULL,
	answered_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, question_order)
);
CREATE TABLE IF NOT EXISTS broker_matches (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	broker_id TEXT NOT NULL,
	match_score DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, broker_id)
);`

type env struct {
	pg      *database.PostgresClient
	service *quiz.Service
	userID  string
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load()
	require.NoError(t, err)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx))
	t.Cleanup(func() { pg.Close() })

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Cleanup(func() { rdb.Close() })

	_, err = pg.Exec(ctx, schema)
	require.NoError(t, err)

	userID := "e2e-" + uuid.NewString()
	brokerUser := "e2e-broker-" + uuid.NewString()
	brokerID := "e2e-b-" + uuid.NewString()
	_, err = pg.Exec(ctx, `INSERT INTO users (id, name, email) VALUES ($1, 'Quiz Taker', $2), ($3, 'Rita Adler', $4)`,
		userID, userID+"@mail.local", brokerUser, brokerUser+"@brokers.local")
	require.NoError(t, err)
	_, err = pg.Exec(ctx, `INSERT INTO brokers (id, user_id, company_name, specializations, experience_level,
		years_of_experience, average_rating, success_rate, is_verified, is_active)
		VALUES ($1, $2, 'Adler Wealth', '{retirement_planning,financial_planning}', 'senior', 12, 4.7, 0.9, true, true)`,
		brokerID, brokerUser)
	require.NoError(t, err)

	t.Cleanup(func() {
		bg := context.Background()
		_, _ = pg.Exec(bg, `DELETE FROM broker_matches WHERE user_id = $1`, userID)
		_, _ = pg.Exec(bg, `DELETE FROM quiz_responses WHERE user_id = $1`, userID)
		_, _ = pg.Exec(bg, `DELETE FROM brokers WHERE id = $1`, brokerID)
		_, _ = pg.Exec(bg, `DELETE FROM users WHERE id IN ($1, $2)`, userID, brokerUser)
	})

	log := logger.NewTestLogger(t)
	responses := repository.NewResponseRepository(pg)
	service := quiz.NewService(&quiz.Config{CompletionMatches: cfg.Quiz.CompletionMatches}, quiz.Dependencies{
		Store:     quiz.NewRedisSessionStore(rdb.Client, time.Minute, time.Minute),
		Responses: responses,
		Users:     repository.NewUserRepository(pg),
		Matcher:   matching.NewEngine(repository.NewBrokerRepository(pg), responses, log),
		Logger:    log,
	})

	return &env{pg: pg, service: service, userID: userID}
}

func TestQuizToMatches(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	e := setup(t)

	step, err := e.service.Start(ctx, e.userID)
	require.NoError(t, err)
	require.NotNil(t, step.Question)

	for step.Completion == nil {
		step, err = e.service.Submit(ctx, step.Session.ID, workerstest.AnswerFor(step.Question))
		require.NoError(t, err)
	}

	assert.Equal(t, models.StatusCompleted, step.Session.Status)
	assert.True(t, step.Completion.Completed)
	require.NotEmpty(t, step.Completion.Matches)
	assert.Equal(t, "Rita Adler", step.Completion.Matches[0].BrokerName)

	persisted, err := repository.NewResponseRepository(e.pg).ListResponses(ctx, e.userID)
	require.NoError(t, err)
	assert.Len(t, persisted, models.TotalSlots)

	saved, err := repository.NewMatchRepository(e.pg).SaveMatches(ctx, e.userID, step.Completion.Matches)
	require.NoError(t, err)
	assert.Equal(t, len(step.Completion.Matches), saved)
}

func TestRestartClearsAnswers(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	step, err := e.service.Start(ctx, e.userID)
	require.NoError(t, err)
	_, err = e.service.Submit(ctx, step.Session.ID, workerstest.AnswerFor(step.Question))
	require.NoError(t, err)

	restarted, err := e.service.Restart(ctx, e.userID)
	require.NoError(t, err)
	assert.NotEqual(t, step.Session.ID, restarted.Session.ID)
	assert.Equal(t, 1, restarted.Session.CurrentSlot)

	persisted, err := repository.NewResponseRepository(e.pg).ListResponses(ctx, e.userID)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}
