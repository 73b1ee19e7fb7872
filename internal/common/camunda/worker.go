package camunda

import (
	"context"
	"strings"
	"time"

	"application-builder/internal/common/config"
	"application-builder/internal/common/errors"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Registration binds a task type to its handler and the input schema its
// job variables must satisfy.
type Registration struct {
	TaskType    string
	Handler     worker.JobHandler
	InputSchema map[string]interface{}
}

// Workers opens and tracks the Zeebe job workers of one process.
type Workers struct {
	client     *Client
	logger     logger.Logger
	errHandler *errors.ErrorHandler
	open       []worker.JobWorker
}

func NewWorkers(client *Client, log logger.Logger) *Workers {
	return &Workers{
		client:     client,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

// Start opens a worker unless it is disabled in config. It reports whether
// a worker was opened.
func (w *Workers) Start(reg Registration, wcfg config.WorkerConfig) bool {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": reg.TaskType})
		return false
	}

	handler := GuardInput(reg.InputSchema, reg.Handler, w.errHandler.HandleJobError)

	jw := w.client.Zeebe().NewJobWorker().
		JobType(reg.TaskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()
	w.open = append(w.open, jw)

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      reg.TaskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return true
}

func (w *Workers) Count() int { return len(w.open) }

// Close stops every worker and waits for in-flight jobs.
func (w *Workers) Close() {
	for _, jw := range w.open {
		jw.Close()
		jw.AwaitClose()
	}
	w.open = nil
}

type rejectFunc func(ctx context.Context, client worker.JobClient, job entities.Job, err error)

// GuardInput validates job variables against schema before next runs. A
// job that fails validation is handed to reject with an INVALID_INPUT error.
func GuardInput(schema map[string]interface{}, next worker.JobHandler, reject rejectFunc) worker.JobHandler {
	if len(schema) == 0 {
		return next
	}
	return func(client worker.JobClient, job entities.Job) {
		result, err := validation.ValidateJSON(schema, job.Variables)
		if err == nil && result.Valid {
			next(client, job)
			return
		}

		details := "variables are not valid JSON"
		if err == nil {
			details = strings.Join(result.GetErrorMessages(), "; ")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		reject(ctx, client, job, errors.NewInvalidInputError(details))
	}
}
