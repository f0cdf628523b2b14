package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/common/metrics"
	"broker-match-workers/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultTopN = 10

// BrokerSource lists candidate brokers. Implementations may already filter
// on eligibility; the engine filters again.
type BrokerSource interface {
	ListEligibleBrokers(ctx context.Context) ([]models.BrokerProfile, error)
}

type ResponseSource interface {
	ListResponses(ctx context.Context, userID string) ([]models.ResponseRecord, error)
}

// Engine ranks brokers for a user. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	brokers   BrokerSource
	responses ResponseSource
	logger    logger.Logger
	tracer    trace.Tracer
}

func NewEngine(brokers BrokerSource, responses ResponseSource, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Engine{
		brokers:   brokers,
		responses: responses,
		logger:    log.WithFields(map[string]interface{}{"component": "matching"}),
		tracer:    otel.Tracer("broker-match-workers/matching"),
	}
}

// Rank scores every eligible broker against the user's persisted answers.
// A user without answers gets an empty list.
func (e *Engine) Rank(ctx context.Context, userID string, topN int) ([]models.MatchResult, error) {
	ctx, span := e.tracer.Start(ctx, "matching.Rank", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	start := time.Now()
	defer func() { metrics.MatchingRankDuration.Observe(time.Since(start).Seconds()) }()

	responses, err := e.responses.ListResponses(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list responses for %s: %w", userID, err)
	}
	if len(responses) == 0 {
		return []models.MatchResult{}, nil
	}

	brokers, err := e.brokers.ListEligibleBrokers(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list brokers: %w", err)
	}

	signals := ExtractSignals(responses)
	results := RankBrokers(brokers, signals, topN)

	span.SetAttributes(
		attribute.Int("matching.candidates", len(brokers)),
		attribute.Int("matching.results", len(results)),
	)
	e.logger.Debug("brokers ranked", map[string]interface{}{
		"userId":     userID,
		"responses":  len(responses),
		"signals":    signals.Answered(),
		"candidates": len(brokers),
		"results":    len(results),
	})
	return results, nil
}

// RankBrokers is the pure ranking step: filter, score, round to three
// decimals, sort by score descending then broker id ascending, truncate.
func RankBrokers(brokers []models.BrokerProfile, signals Signals, topN int) []models.MatchResult {
	if topN <= 0 {
		topN = DefaultTopN
	}

	results := make([]models.MatchResult, 0, len(brokers))
	for _, b := range brokers {
		if !b.Eligible() {
			continue
		}
		results = append(results, models.MatchResult{
			BrokerID:        b.ID,
			Score:           round3(Score(b, signals)),
			BrokerName:      b.Name,
			CompanyName:     b.CompanyName,
			ExperienceLevel: b.ExperienceLevel,
			AverageRating:   b.AverageRating,
			Specializations: append([]string(nil), b.Specializations...),
			Breakdown:       Breakdown(b, signals),
		})
	}
	metrics.MatchingCandidates.Observe(float64(len(results)))

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].BrokerID < results[j].BrokerID
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
