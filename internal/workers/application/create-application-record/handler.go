// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "application-builder/internal/common/errors"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/metrics"
	"application-builder/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-application-record"
)

var (
	ErrInvalidInput         = errors.New("INVALID_INPUT")
	ErrJobNotFound          = errors.New("JOB_NOT_FOUND")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
)

type Handler struct {
	config     *Config
	db         *sql.DB
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
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
		h.fail(ctx, client, job, toStandardError(err, &input))
		return
	}

	h.completeJob(ctx, client, job, output)
}

func toStandardError(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrDuplicateApplication):
		return apperrors.NewDuplicateApplicationError(input.JobID, input.StudentID)
	case errors.Is(err, ErrJobNotFound):
		return apperrors.NewJobNotFoundError(input.JobID)
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, "Application insert timed out", err)
	default:
		return apperrors.Wrap(apperrors.ErrCodeDatabaseInsertFailed, "Failed to create application record", err)
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.JobID == "" || input.StudentID == "" {
		return nil, fmt.Errorf("%w: jobId and studentId are required", ErrInvalidInput)
	}
	if input.CoverLetter == "" {
		return nil, fmt.Errorf("%w: coverLetter is required", ErrInvalidInput)
	}

	var employerID sql.NullString
	err := h.db.QueryRowContext(ctx, `SELECT employer_id FROM jobs WHERE id = $1`, input.JobID).Scan(&employerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, input.JobID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: job lookup failed: %v", ErrDatabaseInsertFailed, err)
	}

	var exists bool
	err = h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE student_id = $1 AND job_id = $2 AND status <> $3
		)`, input.StudentID, input.JobID, models.ApplicationStatusWithdrawn).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: application already exists for student %s and job %s",
			ErrDuplicateApplication, input.StudentID, input.JobID)
	}

	appID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	if err := h.insertApplication(ctx, appID, createdAt, input); err != nil {
		return nil, err
	}

	// audit rows are best effort
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"studentId":      input.StudentID,
		"jobId":          input.JobID,
		"portfolioItems": len(input.SelectedPortfolioItems),
	})
	if err != nil {
		auditDetailsJSON = []byte("{}")
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"application_created",
		"application",
		appID,
		auditDetailsJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": appID,
		})
	}

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": appID,
		"studentId":     input.StudentID,
		"jobId":         input.JobID,
	})

	return &Output{
		ApplicationID:     appID,
		ApplicationStatus: models.ApplicationStatusSubmitted,
		EmployerID:        employerID.String,
		CreatedAt:         createdAt,
	}, nil
}

// insertApplication writes the application and its portfolio selection in
// one transaction.
func (h *Handler) insertApplication(ctx context.Context, appID, createdAt string, input *Input) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ErrDatabaseInsertFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO applications (
			id, job_id, student_id, cover_letter, custom_resume,
			additional_notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		appID,
		input.JobID,
		input.StudentID,
		input.CoverLetter,
		input.CustomResume,
		input.AdditionalNotes,
		models.ApplicationStatusSubmitted,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	for position, itemID := range input.SelectedPortfolioItems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO application_portfolio_items (application_id, portfolio_item_id, position)
			VALUES ($1, $2, $3)`,
			appID, itemID, position,
		)
		if err != nil {
			return fmt.Errorf("%w: portfolio item %s: %v", ErrDatabaseInsertFailed, itemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrDatabaseInsertFailed, err)
	}
	return nil
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
