// Package quiz runs the adaptive broker-matching questionnaire: it plans the
// ten question slots, serves and records answers, reads behavioral signals
// off them and hands the finished history to the matching engine.
package quiz

import (
	"context"
	"errors"

	"broker-match-workers/internal/models"
)

var (
	ErrUserNotFound        = errors.New("USER_NOT_FOUND")
	ErrSessionNotFound     = errors.New("SESSION_NOT_FOUND")
	ErrSessionCompleted    = errors.New("SESSION_COMPLETED")
	ErrInvalidAnswer       = errors.New("INVALID_ANSWER")
	ErrPersistenceFailed   = errors.New("PERSISTENCE_FAILED")
	ErrCompletionFailed    = errors.New("COMPLETION_FAILED")
	ErrNarratorUnavailable = errors.New("NARRATOR_UNAVAILABLE")
)

// QuestionGenerator words a slot into a question. Implementations may fail;
// the caller falls back to the static table.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, req models.QuestionRequest) (*models.Question, error)
}

// InsightNarrator turns a response history into "**Title**: text" lines.
type InsightNarrator interface {
	NarrateInsights(ctx context.Context, responses []models.ResponseRecord) (string, error)
}

// ResponseStore persists answers keyed by user and slot order.
type ResponseStore interface {
	ListResponses(ctx context.Context, userID string) ([]models.ResponseRecord, error)
	SaveResponse(ctx context.Context, userID string, record models.ResponseRecord) error
	SaveResponses(ctx context.Context, userID string, records []models.ResponseRecord) error
	DeleteResponses(ctx context.Context, userID string) (int64, error)
}

type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Matcher ranks brokers against the persisted answers of a user.
type Matcher interface {
	Rank(ctx context.Context, userID string, topN int) ([]models.MatchResult, error)
}

// SessionStore keeps live sessions outside the process.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.QuizSession, error)
	Save(ctx context.Context, session *models.QuizSession) error
	Delete(ctx context.Context, sessionID string) error
	ActiveSession(ctx context.Context, userID string) (string, error)
	SetActive(ctx context.Context, userID, sessionID string) error
	ClearActive(ctx context.Context, userID string) error
}
