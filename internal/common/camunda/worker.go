// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"broker-match-workers/internal/common/config"
	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusThrown    = "error_thrown"
	StatusPanicked  = "panicked"
	StatusNoResult  = "no_result"
)

// JobRecorder receives one observation per handled job.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

// statusClient remembers which terminal command the handler issued.
type statusClient struct {
	worker.JobClient
	status string
}

func (c *statusClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.status = StatusCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *statusClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.status = StatusFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *statusClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.status = StatusThrown
	return c.JobClient.NewThrowErrorCommand()
}

// Instrument wraps handler with the active-jobs gauge, duration histogram
// and the recorder. A panicking handler is logged and counted; the job is
// left to time out.
func Instrument(taskType string, handler worker.JobHandler, rec JobRecorder, log logger.Logger) worker.JobHandler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		tracked := &statusClient{JobClient: client, status: StatusNoResult}

		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer func() {
			if r := recover(); r != nil {
				tracked.status = StatusPanicked
				log.Error("job handler panicked", map[string]interface{}{
					"taskType": taskType,
					"jobKey":   job.Key,
					"panic":    fmt.Sprint(r),
				})
			}

			elapsed := time.Since(start)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			if rec != nil {
				ctx := context.Background()
				rec.RecordJobProcessed(ctx, taskType, tracked.status)
				rec.RecordJobDuration(ctx, taskType, elapsed, tracked.status)
			}
		}()

		handler(tracked, job)
	}
}

// StartWorker opens a job worker for taskType. It returns nil when the
// worker is disabled in configuration.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, rec JobRecorder, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, rec, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jobWorker
}
