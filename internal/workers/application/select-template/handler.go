// internal/workers/application/select-template/handler.go
package selecttemplate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"application-builder/internal/builder/portfolio"
	"application-builder/internal/builder/templates"
	apperrors "application-builder/internal/common/errors"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "select-template"
)

type Handler struct {
	config     *Config
	ranker     *portfolio.Ranker
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, ranker *portfolio.Ranker, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		ranker:     ranker,
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
		if errors.Is(err, templates.ErrTemplateNotFound) {
			h.fail(ctx, client, job, apperrors.NewTemplateNotFoundError(input.TemplateID))
			return
		}
		h.fail(ctx, client, job, apperrors.AsStandard(err))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	recommended := input.TemplateID == ""
	tpl := templates.Recommend(&input.Job)
	if !recommended {
		var err error
		tpl, err = templates.Find(input.TemplateID)
		if err != nil {
			return nil, err
		}
	}

	items := input.PortfolioItems
	if len(items) == 0 && h.ranker != nil {
		items = h.ranker.Ranked()
	}

	letter := templates.Populate(tpl.Template, &input.Job, items, input.UserName)
	if unresolved := templates.UnresolvedTokens(letter); len(unresolved) > 0 {
		h.logger.Warn("cover letter has unresolved tokens", map[string]interface{}{
			"templateId": tpl.ID,
			"tokens":     unresolved,
		})
	}

	h.logger.Info("template selected", map[string]interface{}{
		"templateId":  tpl.ID,
		"recommended": recommended,
		"jobId":       input.Job.ID,
	})

	return &Output{
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		Recommended:  recommended,
		CoverLetter:  letter,
	}, nil
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
