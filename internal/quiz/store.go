package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"broker-match-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "quiz:session:"
	activeKeyPrefix  = "quiz:active:"
)

// RedisSessionStore keeps sessions as JSON documents with a TTL. Completed
// sessions are kept read-only for completedTTL.
type RedisSessionStore struct {
	client       *redis.Client
	ttl          time.Duration
	completedTTL time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl, completedTTL time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if completedTTL <= 0 {
		completedTTL = 24 * time.Hour
	}
	return &RedisSessionStore{client: client, ttl: ttl, completedTTL: completedTTL}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

func activeKey(userID string) string { return activeKeyPrefix + userID }

// Get returns nil, nil when the session does not exist or has expired.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	var session models.QuizSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	ttl := s.ttl
	if session.IsCompleted() {
		ttl = s.completedTTL
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (s *RedisSessionStore) ActiveSession(ctx context.Context, userID string) (string, error) {
	id, err := s.client.Get(ctx, activeKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

func (s *RedisSessionStore) SetActive(ctx context.Context, userID, sessionID string) error {
	return s.client.Set(ctx, activeKey(userID), sessionID, s.ttl).Err()
}

func (s *RedisSessionStore) ClearActive(ctx context.Context, userID string) error {
	return s.client.Del(ctx, activeKey(userID)).Err()
}
