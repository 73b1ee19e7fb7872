package wizard

import (
	"errors"
	"strings"
)

var (
	ErrTemplateRequired   = errors.New("TEMPLATE_REQUIRED")
	ErrSubmissionInFlight = errors.New("SUBMISSION_IN_FLIGHT")
	ErrAlreadySubmitted   = errors.New("ALREADY_SUBMITTED")
	ErrNotOnReview        = errors.New("NOT_ON_REVIEW")
	ErrSessionClosed      = errors.New("SESSION_CLOSED")
	ErrSubmissionFailed   = errors.New("SUBMISSION_FAILED")
	ErrUnknownChange      = errors.New("UNKNOWN_CHANGE")
	ErrInvalidSnapshot    = errors.New("INVALID_SNAPSHOT")
)

// ValidationError carries every rule the application data violated.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "application validation failed: " + strings.Join(e.Errors, "; ")
}

// SubmissionError is returned when the submitter rejected the application
// or could not be reached. Message is the text shown to the applicant.
type SubmissionError struct {
	Message string
	cause   error
}

func (e *SubmissionError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *SubmissionError) Unwrap() error { return e.cause }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmissionFailed }
