package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler reports a failed job to the engine: technical errors are
// failed with retries while budget remains, everything else is thrown as a
// BPMN error for the process model to catch.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := AsStandard(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":        job.Key,
		"jobType":       job.Type,
		"workflowKey":   job.ProcessInstanceKey,
		"errorCode":     string(stdErr.Code),
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	payload, marshalErr := json.Marshal(bpmnErr.ToErrorVariables())

	if bpmnErr.Retries > 0 && job.Retries > 1 {
		remaining := int32(bpmnErr.Retries)
		if job.Retries-1 < remaining {
			remaining = job.Retries - 1
		}
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(remaining).
			ErrorMessage(bpmnErr.Message)
		if marshalErr == nil {
			if withVars, err := cmd.VariablesFromString(string(payload)); err == nil {
				_, _ = withVars.Send(ctx)
				return
			}
		}
		_, _ = cmd.Send(ctx)
		return
	}

	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)
	if marshalErr == nil {
		if withVars, err := cmd.VariablesFromString(string(payload)); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}
