// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"application-builder/internal/builder/validate"
	apperrors "application-builder/internal/common/errors"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/metrics"
	"application-builder/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-application-data"
)

const (
	msgInvalidEmail = "Contact email is not a valid address"
	msgInvalidPhone = "Contact phone must be in E.164 format"
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.New(apperrors.ErrCodeParseError, "Failed to parse job variables", err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		var stdErr *apperrors.StandardError
		if !errors.As(err, &stdErr) {
			stdErr = apperrors.AsStandard(err)
		}
		h.fail(ctx, client, job, stdErr)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// execute applies the wizard's submission rules plus the contact checks. An
// invalid application is returned as APPLICATION_VALIDATION_FAILED carrying
// every message.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	result := validate.ApplicationData(input.ApplicationData)
	violations := append([]validate.Violation(nil), result.Violations...)
	messages := append([]string(nil), result.Errors...)

	if input.ContactEmail != "" && !validation.ValidateEmail(input.ContactEmail) {
		violations = append(violations, validate.Violation{Field: "contact_email", Code: "INVALID_FORMAT", Message: msgInvalidEmail})
		messages = append(messages, msgInvalidEmail)
	}
	if input.ContactPhone != "" && !validation.ValidatePhone(input.ContactPhone) {
		violations = append(violations, validate.Violation{Field: "contact_phone", Code: "INVALID_FORMAT", Message: msgInvalidPhone})
		messages = append(messages, msgInvalidPhone)
	}

	for _, v := range violations {
		metrics.ValidationFailures.WithLabelValues(v.Field + ":" + v.Code).Inc()
	}

	if len(violations) > 0 {
		h.logger.Info("application validation failed", map[string]interface{}{
			"errorCount": len(violations),
		})
		return nil, apperrors.NewApplicationValidationFailedError(messages).
			WithMetadata("validationErrors", violations)
	}

	return &Output{IsValid: true, ValidationErrors: []validate.Violation{}}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err *apperrors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(err.Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
