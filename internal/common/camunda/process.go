package camunda

import (
	"context"
	"fmt"

	"application-builder/internal/common/logger"
	"application-builder/internal/models"
)

// ProcessStarter starts a BPMN process instance for every submitted
// application, handing the event to the workflow as variables.
type ProcessStarter struct {
	client    *Client
	processID string
	logger    logger.Logger
}

func NewProcessStarter(client *Client, processID string, log logger.Logger) *ProcessStarter {
	return &ProcessStarter{
		client:    client,
		processID: processID,
		logger:    log.WithFields(map[string]interface{}{"bpmnProcessId": processID}),
	}
}

func (p *ProcessStarter) Name() string { return "zeebe" }

func (p *ProcessStarter) Publish(ctx context.Context, event models.ApplicationSubmittedEvent) error {
	var instanceKey int64
	err := p.client.ExecuteWithRetry(ctx, "create-instance", func(ctx context.Context) error {
		cmd, err := p.client.Zeebe().NewCreateInstanceCommand().
			BPMNProcessId(p.processID).
			LatestVersion().
			VariablesFromObject(event)
		if err != nil {
			return fmt.Errorf("encode process variables: %w", err)
		}
		resp, err := cmd.Send(ctx)
		if err != nil {
			return err
		}
		instanceKey = resp.GetProcessInstanceKey()
		return nil
	})
	if err != nil {
		return err
	}

	p.logger.Info("process instance started", map[string]interface{}{
		"applicationId":      event.ApplicationID,
		"processInstanceKey": instanceKey,
	})
	return nil
}
