// Package submission hands validated applications to whatever persists
// them: the local applications table or the remote application service.
package submission

import (
	"context"
	"errors"
	"time"

	"application-builder/internal/common/logger"
	"application-builder/internal/models"
	createapplicationrecord "application-builder/internal/workers/application/create-application-record"
)

const (
	MsgDuplicateApplication  = "You have already applied to this job"
	MsgJobUnavailable        = "This job is no longer accepting applications"
	MsgIncompleteApplication = "Application is missing required information"
	MsgSubmitted             = "Application submitted"
)

// RecordCreator is the create-application-record handler.
type RecordCreator interface {
	Execute(ctx context.Context, input *createapplicationrecord.Input) (*createapplicationrecord.Output, error)
}

// EventPublisher announces accepted applications.
type EventPublisher interface {
	Name() string
	Publish(ctx context.Context, event models.ApplicationSubmittedEvent) error
}

// RecordSubmitter writes the application through the record handler and
// then announces it. Publish failures never fail the submission.
type RecordSubmitter struct {
	records    RecordCreator
	publishers []EventPublisher
	logger     logger.Logger
}

func NewRecordSubmitter(records RecordCreator, log logger.Logger, publishers ...EventPublisher) *RecordSubmitter {
	return &RecordSubmitter{
		records:    records,
		publishers: publishers,
		logger:     log.WithFields(map[string]interface{}{"component": "record-submitter"}),
	}
}

func (s *RecordSubmitter) Submit(ctx context.Context, req models.SubmitApplicationRequest) (*models.ApiResponse, error) {
	out, err := s.records.Execute(ctx, &createapplicationrecord.Input{
		JobID:                  req.JobID,
		StudentID:              req.StudentID,
		CoverLetter:            req.CoverLetter,
		CustomResume:           req.CustomResume,
		SelectedPortfolioItems: req.SelectedPortfolioItems,
		AdditionalNotes:        req.AdditionalNotes,
	})
	switch {
	case errors.Is(err, createapplicationrecord.ErrDuplicateApplication):
		return &models.ApiResponse{Success: false, Message: MsgDuplicateApplication}, nil
	case errors.Is(err, createapplicationrecord.ErrJobNotFound):
		return &models.ApiResponse{Success: false, Message: MsgJobUnavailable}, nil
	case errors.Is(err, createapplicationrecord.ErrInvalidInput):
		return &models.ApiResponse{Success: false, Message: MsgIncompleteApplication}, nil
	case err != nil:
		return nil, err
	}

	event := models.ApplicationSubmittedEvent{
		ApplicationID:  out.ApplicationID,
		JobID:          req.JobID,
		StudentID:      req.StudentID,
		EmployerID:     out.EmployerID,
		PortfolioItems: req.SelectedPortfolioItems,
		SubmittedAt:    out.CreatedAt,
	}
	if event.SubmittedAt == "" {
		event.SubmittedAt = time.Now().UTC().Format(time.RFC3339)
	}
	s.publish(ctx, event)

	return &models.ApiResponse{
		Success: true,
		Data:    &models.ApplicationRef{ID: out.ApplicationID},
		Message: MsgSubmitted,
	}, nil
}

func (s *RecordSubmitter) publish(ctx context.Context, event models.ApplicationSubmittedEvent) {
	for _, p := range s.publishers {
		if err := p.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish application event", map[string]interface{}{
				"publisher":     p.Name(),
				"applicationId": event.ApplicationID,
				"error":         err.Error(),
			})
		}
	}
}
