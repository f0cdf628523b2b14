// internal/workers/jobs.go
package workers

import (
	"context"
	stderrors "errors"
	"fmt"

	"broker-match-workers/internal/common/camunda"
	"broker-match-workers/internal/common/errors"
	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/common/metrics"
	"broker-match-workers/internal/common/validation"
	"broker-match-workers/internal/quiz"
	"broker-match-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ToStandardError maps domain sentinels to the error model the process
// engine understands. ref is the session or user id the job is about.
func ToStandardError(err error, ref string) *errors.StandardError {
	var stdErr *errors.StandardError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.Is(err, quiz.ErrInvalidAnswer):
		return errors.NewAnswerValidationFailedError(err.Error())
	case stderrors.Is(err, quiz.ErrSessionNotFound):
		return errors.NewSessionNotFoundError(ref)
	case stderrors.Is(err, quiz.ErrSessionCompleted):
		return errors.NewSessionCompletedError(ref)
	case stderrors.Is(err, quiz.ErrUserNotFound):
		return errors.NewUserNotFoundError(ref)
	case stderrors.Is(err, quiz.ErrCompletionFailed):
		return errors.NewQuizCompletionFailedError(err)
	case stderrors.Is(err, quiz.ErrPersistenceFailed):
		return errors.NewQuizPersistenceFailedError(err)
	case stderrors.Is(err, repository.ErrSearchFailed):
		return errors.NewSearchQueryFailedError("brokers", err)
	case stderrors.Is(err, repository.ErrQueryFailed):
		return errors.NewQueryExecutionFailedError("quiz", err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("worker", err)
	default:
		return errors.NewInternalError(err)
	}
}

// DecodeVariables reads the job variables and checks them against schema.
func DecodeVariables(job entities.Job, schema map[string]interface{}) (map[string]interface{}, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("variables are not a JSON object: %v", err))
	}

	result, err := validation.ValidateInput(vars, schema)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Error())
	}
	return vars, nil
}

// Responder sends the terminal command for a job and counts the outcome.
type Responder struct {
	taskType string
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewResponder(taskType string, log logger.Logger) *Responder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Responder{
		taskType: taskType,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

func (r *Responder) Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.Fail(ctx, client, job, errors.NewInternalError(fmt.Errorf("encode output: %w", err)), "")
		return
	}
	err = camunda.Retry(ctx, camunda.CommandRetry, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
}

func (r *Responder) Fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, ref string) {
	stdErr := ToStandardError(err, ref)
	metrics.WorkerJobsFailed.WithLabelValues(r.taskType, string(stdErr.Code)).Inc()
	r.errors.HandleJobError(ctx, client, job, stdErr)
}
