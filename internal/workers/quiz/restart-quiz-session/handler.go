// internal/workers/quiz/restart-quiz-session/handler.go
package restartquizsession

import (
	"context"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/workers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "restart-quiz-session"

type Restarter interface {
	Restart(ctx context.Context, userID string) (*quiz.Step, error)
}

type Handler struct {
	config    *Config
	service   Restarter
	responder *workers.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, service Restarter, log logger.Logger) *Handler {
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

// Execute wipes the user's answers and live session and serves slot one.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	step, err := h.service.Restart(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return workers.NewStepOutput(step), nil
}
