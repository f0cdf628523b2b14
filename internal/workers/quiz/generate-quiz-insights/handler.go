// internal/workers/quiz/generate-quiz-insights/handler.go
package generatequizinsights

import (
	"context"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/workers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-quiz-insights"

type Reporter interface {
	Insights(ctx context.Context, sessionID string) (*quiz.InsightReport, error)
}

type Handler struct {
	config    *Config
	service   Reporter
	responder *workers.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, service Reporter, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		service:   service,
		responder: workers.NewResponder(TaskType, log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	vars, err := workers.DecodeVariables(job, GetInputSchema())
	if err != nil {
		h.responder.Fail(ctx, client, job, err, "")
		return
	}
	input := &Input{SessionID: vars["sessionId"].(string)}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.responder.Fail(ctx, client, job, err, input.SessionID)
		return
	}
	h.responder.Complete(ctx, client, job, output)
}

// Execute reads a session without changing it. An expired session yields a
// "no_data" report rather than an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	report, err := h.service.Insights(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("insight report built", map[string]interface{}{
		"sessionId": input.SessionID,
		"status":    report.CompletionStatus,
		"responses": report.TotalResponses,
	})
	return report, nil
}
