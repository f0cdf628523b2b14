// internal/workers/quiz/submit-quiz-response/handler.go
package submitquizresponse

import (
	"context"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/workers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "submit-quiz-response"

type Submitter interface {
	Submit(ctx context.Context, sessionID string, raw interface{}) (*quiz.Step, error)
}

type Handler struct {
	config    *Config
	service   Submitter
	responder *workers.Responder
	logger    logger.Logger
}

func NewHandler(config *Config, service Submitter, log logger.Logger) *Handler {
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
	input := &Input{
		SessionID: vars["sessionId"].(string),
		Answer:    vars["answer"],
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.responder.Fail(ctx, client, job, err, input.SessionID)
		return
	}
	h.responder.Complete(ctx, client, job, output)
}

// Execute records the answer and returns the next question, or the
// completion payload after the final slot.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	step, err := h.service.Submit(ctx, input.SessionID, input.Answer)
	if err != nil {
		return nil, err
	}

	output := workers.NewStepOutput(step)
	fields := map[string]interface{}{
		"sessionId": input.SessionID,
		"current":   output.Progress.Current,
		"insights":  len(output.Insights),
	}
	if output.Completion != nil {
		fields["matches"] = len(output.Completion.Matches)
		h.logger.Info("quiz completed", fields)
	} else {
		h.logger.Info("quiz response recorded", fields)
	}
	return output, nil
}
