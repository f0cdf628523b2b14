// internal/workers/matching/rank-brokers/handler.go
package rankbrokers

import (
	"context"
	"encoding/json"

	"broker-match-workers/internal/common/errors"
	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/models"
	"broker-match-workers/internal/workers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "rank-brokers"

type Ranker interface {
	Rank(ctx context.Context, userID string, topN int) ([]models.MatchResult, error)
}

type MatchStore interface {
	SaveMatches(ctx context.Context, userID string, matches []models.MatchResult) (int, error)
}

type Notifier interface {
	PublishMatches(ctx context.Context, userID string, matches []models.MatchResult) (string, error)
}

type ScoreRecorder interface {
	RecordTopScore(ctx context.Context, score float64)
}

type Dependencies struct {
	Ranker   Ranker
	Matches  MatchStore
	Notifier Notifier
	Scores   ScoreRecorder
	Logger   logger.Logger
}

type Handler struct {
	config    *Config
	ranker    Ranker
	matches   MatchStore
	notifier  Notifier
	scores    ScoreRecorder
	responder *workers.Responder
	logger    logger.Logger
}

// NewHandler builds the worker. Matches and Notifier may be nil; the
// matching input flags are then ignored.
func NewHandler(config *Config, deps Dependencies) *Handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		ranker:    deps.Ranker,
		matches:   deps.Matches,
		notifier:  deps.Notifier,
		scores:    deps.Scores,
		responder: workers.NewResponder(TaskType, log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	if _, err := workers.DecodeVariables(job, GetInputSchema()); err != nil {
		h.responder.Fail(ctx, client, job, err, "")
		return
	}
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.responder.Fail(ctx, client, job, errors.NewInvalidInputError(err.Error()), "")
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.responder.Fail(ctx, client, job, err, input.UserID)
		return
	}
	h.responder.Complete(ctx, client, job, output)
}

// Execute ranks brokers for the user and optionally stores and announces
// the result. A user without answers gets an empty ranking.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	topN := input.TopN
	if topN <= 0 {
		topN = h.config.DefaultTopN
	}

	results, err := h.ranker.Rank(ctx, input.UserID, topN)
	if err != nil {
		return nil, errors.NewBrokerMatchingFailedError(err)
	}

	output := &Output{
		UserID:  input.UserID,
		Matches: results,
		Count:   len(results),
	}
	if len(results) > 0 && h.scores != nil {
		h.scores.RecordTopScore(ctx, results[0].Score)
	}

	if input.Persist && len(results) > 0 {
		if h.matches == nil {
			h.logger.Warn("match persistence requested but no store is configured", map[string]interface{}{
				"userId": input.UserID,
			})
		} else {
			inserted, err := h.matches.SaveMatches(ctx, input.UserID, results)
			if err != nil {
				return nil, err
			}
			output.Persisted = inserted
		}
	}

	if input.Notify && len(results) > 0 {
		if h.notifier == nil {
			h.logger.Warn("match notification requested but notifications are disabled", map[string]interface{}{
				"userId": input.UserID,
			})
		} else {
			id, err := h.notifier.PublishMatches(ctx, input.UserID, results)
			if err != nil {
				return nil, errors.NewNotificationSendFailedError("sns", err)
			}
			output.NotificationID = id
		}
	}

	h.logger.Info("brokers ranked", map[string]interface{}{
		"userId":    input.UserID,
		"count":     output.Count,
		"persisted": output.Persisted,
		"notified":  output.NotificationID != "",
	})
	return output, nil
}
