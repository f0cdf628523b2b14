// Package workerstest wires a quiz service and matching engine over
// in-memory stores for worker tests.
package workerstest

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/matching"
	"broker-match-workers/internal/models"
	"broker-match-workers/internal/quiz"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Responses is an in-memory quiz.ResponseStore.
type Responses struct {
	mu     sync.Mutex
	byUser map[string]map[int]models.ResponseRecord
}

func NewResponses() *Responses {
	return &Responses{byUser: make(map[string]map[int]models.ResponseRecord)}
}

func (r *Responses) ListResponses(_ context.Context, userID string) ([]models.ResponseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ResponseRecord, 0, len(r.byUser[userID]))
	for _, rec := range r.byUser[userID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *Responses) SaveResponse(_ context.Context, userID string, record models.ResponseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(userID, record)
	return nil
}

func (r *Responses) SaveResponses(_ context.Context, userID string, records []models.ResponseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.put(userID, rec)
	}
	return nil
}

func (r *Responses) DeleteResponses(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.byUser[userID]))
	delete(r.byUser, userID)
	return n, nil
}

func (r *Responses) Count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser[userID])
}

func (r *Responses) put(userID string, rec models.ResponseRecord) {
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[int]models.ResponseRecord)
	}
	r.byUser[userID][rec.Order] = rec
}

// Users is a quiz.UserDirectory over a fixed id set.
type Users map[string]bool

func (u Users) UserExists(_ context.Context, userID string) (bool, error) {
	return u[userID], nil
}

// Brokers is a fixed matching.BrokerSource.
type Brokers []models.BrokerProfile

func (b Brokers) ListEligibleBrokers(context.Context) ([]models.BrokerProfile, error) {
	return b, nil
}

func Broker(id, level string, rating float64, specializations ...string) models.BrokerProfile {
	return models.BrokerProfile{
		ID:              id,
		Name:            "Broker " + id,
		Email:           id + "@brokers.example.com",
		CompanyName:     "Firm " + id,
		ExperienceLevel: level,
		AverageRating:   rating,
		SuccessRate:     0.8,
		Specializations: specializations,
		IsActive:        true,
		IsVerified:      true,
	}
}

// DefaultBrokers is a small directory with one clear retirement specialist.
func DefaultBrokers() Brokers {
	return Brokers{
		Broker("b-retire", models.LevelSenior, 4.8, "retirement_planning", "financial_planning"),
		Broker("b-growth", models.LevelExpert, 4.1, "growth_investing"),
		Broker("b-junior", models.LevelJunior, 3.9),
	}
}

// Fixture is a quiz service with every collaborator reachable by the test.
type Fixture struct {
	Redis     *miniredis.Miniredis
	Client    *redis.Client
	Store     *quiz.RedisSessionStore
	Responses *Responses
	Engine    *matching.Engine
	Service   *quiz.Service
}

// NewFixture knows the users "u-1" and "u-2".
func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.NewTestLogger(t)
	responses := NewResponses()
	store := quiz.NewRedisSessionStore(client, time.Hour, 24*time.Hour)
	engine := matching.NewEngine(DefaultBrokers(), responses, log)

	service := quiz.NewService(&quiz.Config{CompletionMatches: 3}, quiz.Dependencies{
		Store:     store,
		Responses: responses,
		Users:     Users{"u-1": true, "u-2": true},
		Matcher:   engine,
		Logger:    log,
	})

	return &Fixture{
		Redis:     mr,
		Client:    client,
		Store:     store,
		Responses: responses,
		Engine:    engine,
		Service:   service,
	}
}

// AnswerFor returns a raw answer the question accepts.
func AnswerFor(q *models.Question) interface{} {
	switch q.Format {
	case models.FormatScale:
		return q.Scale.Min + 1
	case models.FormatText:
		return "I want a steady retirement income"
	case models.FormatMultipleChoice, models.FormatMultipleSelect:
		return []interface{}{q.Options[0].Value}
	case models.FormatBoolean:
		return true
	}
	return q.Options[0].Value
}
