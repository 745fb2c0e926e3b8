// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"

	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/metrics"
	"volunteer-workers/internal/common/observability"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Registration describes one task type to subscribe to.
type Registration struct {
	TaskType      string
	Handler       JobHandler
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for reg.TaskType with instrumentation around
// the handler.
func NewWorker(client zbc.Client, reg Registration, obs *observability.Observability, log logger.Logger) *CamundaWorker {
	jobWorker := client.NewJobWorker().
		JobType(reg.TaskType).
		Handler(Instrument(reg.TaskType, reg.Handler.Handle, obs)).
		MaxJobsActive(reg.MaxJobsActive).
		Timeout(reg.Timeout).
		Name(reg.TaskType + "-worker").
		Open()

	w := &CamundaWorker{
		worker:   jobWorker,
		logger:   log.WithFields(map[string]interface{}{"taskType": reg.TaskType}),
		taskType: reg.TaskType,
	}
	w.logger.Info("worker started", map[string]interface{}{
		"maxJobsActive": reg.MaxJobsActive,
		"timeout":       reg.Timeout.String(),
	})
	return w
}

// Instrument wraps a job handler with the active-jobs gauge, the duration
// histogram and a span per job.
func Instrument(taskType string, next worker.JobHandler, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		ctx, span := obs.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.GetKey()),
			attribute.Int64("process.instance.key", job.GetProcessInstanceKey()),
		)
		defer span.End()

		next(client, job)

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobDuration(ctx, taskType, elapsed)
		obs.RecordJobProcessed(ctx, taskType, "handled")
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop closes the job subscription and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
