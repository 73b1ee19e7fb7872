// internal/workers/application/rank-portfolio-items/handler.go
package rankportfolioitems

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"application-builder/internal/builder/portfolio"
	apperrors "application-builder/internal/common/errors"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/metrics"
	"application-builder/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-portfolio-items"
)

var (
	ErrNilInput     = errors.New("input cannot be nil")
	ErrInvalidScore = errors.New("INVALID_RELEVANCE_SCORE")
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
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	items := input.Items
	if len(items) == 0 && h.ranker != nil {
		items = h.ranker.Ranked()
	}

	seen := make(map[string]bool, len(items))
	unique := make([]models.PortfolioItem, 0, len(items))
	for _, it := range items {
		if it.RelevanceScore < 0 || it.RelevanceScore > 1 {
			return nil, fmt.Errorf("%w: item %s has score %.2f", ErrInvalidScore, it.ID, it.RelevanceScore)
		}
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		unique = append(unique, it)
	}

	ranked := portfolio.Rank(unique)

	limit := input.MaxItems
	if limit <= 0 {
		limit = h.config.MaxItems
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	output := &Output{RankedItems: ranked, TotalItems: len(unique)}
	if len(ranked) > 0 {
		output.TopItemID = ranked[0].ID
	}

	h.logger.Info("ranking completed", map[string]interface{}{
		"inputCount":  len(items),
		"outputCount": len(ranked),
	})
	return output, nil
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
