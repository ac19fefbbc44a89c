// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"pawmatch-workers/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler is implemented by every matching worker handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Registration binds a task type to its handler.
type Registration struct {
	TaskType string
	Handler  JobHandler
}

// StartWorkers opens one job worker per enabled registration and returns them
// so the caller can close them on shutdown.
func StartWorkers(client zbc.Client, cfg *config.Config, regs []Registration, log *zap.Logger) []worker.JobWorker {
	workers := make([]worker.JobWorker, 0, len(regs))
	for _, reg := range regs {
		wcfg := config.GetWorkerConfig(cfg, reg.TaskType)
		if !wcfg.Enabled {
			log.Info("worker disabled", zap.String("taskType", reg.TaskType))
			continue
		}

		jw := client.NewJobWorker().
			JobType(reg.TaskType).
			Handler(reg.Handler.Handle).
			MaxJobsActive(wcfg.MaxJobsActive).
			Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
			Open()
		workers = append(workers, jw)

		log.Info("worker started",
			zap.String("taskType", reg.TaskType),
			zap.Int("maxJobsActive", wcfg.MaxJobsActive),
			zap.Int("timeout_ms", wcfg.Timeout),
		)
	}
	return workers
}

// StopWorkers closes every job worker and waits for in-flight jobs.
func StopWorkers(workers []worker.JobWorker, log *zap.Logger) {
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	log.Info("all workers stopped", zap.Int("count", len(workers)))
}
