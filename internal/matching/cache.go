package matching

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/common/metrics"
	"broker-match-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	brokerCacheKey     = "matching:brokers:eligible"
	defaultBrokerCache = 5 * time.Minute
)

// CachedBrokerSource reads the broker directory through Redis. Cache errors
// never fail a lookup; they fall through to the wrapped source.
type CachedBrokerSource struct {
	next   BrokerSource
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedBrokerSource(next BrokerSource, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedBrokerSource {
	if ttl <= 0 {
		ttl = defaultBrokerCache
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedBrokerSource{next: next, client: client, ttl: ttl, logger: log}
}

func (c *CachedBrokerSource) ListEligibleBrokers(ctx context.Context) ([]models.BrokerProfile, error) {
	cached, err := c.client.Get(ctx, brokerCacheKey).Result()
	switch {
	case err == nil:
		var brokers []models.BrokerProfile
		if jsonErr := json.Unmarshal([]byte(cached), &brokers); jsonErr == nil {
			metrics.MatchingCacheLookups.WithLabelValues("hit").Inc()
			return brokers, nil
		}
		c.logger.Warn("discarding unreadable broker cache entry", nil)
		metrics.MatchingCacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.MatchingCacheLookups.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("broker cache read failed", map[string]interface{}{"error": err.Error()})
		metrics.MatchingCacheLookups.WithLabelValues("error").Inc()
	}

	brokers, err := c.next.ListEligibleBrokers(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(brokers)
	if err == nil {
		if setErr := c.client.Set(ctx, brokerCacheKey, data, c.ttl).Err(); setErr != nil {
			c.logger.Warn("broker cache write failed", map[string]interface{}{"error": setErr.Error()})
		}
	}
	return brokers, nil
}

// Invalidate drops the cached directory so the next lookup reloads it.
func (c *CachedBrokerSource) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, brokerCacheKey).Err()
}
