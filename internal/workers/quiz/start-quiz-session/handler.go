// internal/workers/quiz/start-quiz-session/handler.go
package startquizsession

import (
	"context"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/workers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "start-quiz-session"

type Starter interface {
	Start(ctx context.Context, userID string) (*quiz.Step, error)
}

type Handler struct {
	config    *Config
	service   Starter
	responder *workers.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, service Starter, log logger.Logger) *Handler {
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

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	vars, err := workers.DecodeVariables(job, GetInputSchema())
	if err != nil {
		h.responder.Fail(ctx, client, job, err, "")
		return
	}
	input := &Input{UserID: vars["userId"].(string)}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.responder.Fail(ctx, client, job, err, input.UserID)
		return
	}
	h.responder.Complete(ctx, client, job, output)
}

// Execute hands out the user's session: the live one, one resumed from
// stored answers, or a new one.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	step, err := h.service.Start(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	output := workers.NewStepOutput(step)
	h.logger.Info("quiz session ready", map[string]interface{}{
		"userId":    input.UserID,
		"sessionId": output.SessionID,
		"status":    output.Status,
		"current":   output.Progress.Current,
	})
	return output, nil
}
