package server

import (
	"errors"
	"fmt"
	"net/http"

	"application-builder/internal/builder/jobs"
	"application-builder/internal/builder/portfolio"
	"application-builder/internal/builder/session"
	"application-builder/internal/builder/templates"
	"application-builder/internal/builder/wizard"
	apperrors "application-builder/internal/common/errors"
	"application-builder/internal/models"

	"github.com/go-playground/validator/v10"
)

var errInvalidBody = errors.New("INVALID_BODY")

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
	// Notices are the session notices raised by the failed operation.
	Notices []models.Notice `json:"notices,omitempty"`
}

// HTTPStatus returns the status code for an error from the session layer.
func HTTPStatus(err error) int {
	var vErr *wizard.ValidationError
	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, wizard.ErrSessionClosed),
		errors.Is(err, jobs.ErrJobNotFound),
		errors.Is(err, portfolio.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrTemplateRequired),
		errors.Is(err, templates.ErrTemplateNotFound),
		errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrSubmissionInFlight),
		errors.Is(err, wizard.ErrAlreadySubmitted),
		errors.Is(err, wizard.ErrNotOnReview):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrSubmissionFailed),
		errors.Is(err, jobs.ErrJobQueryFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) apperrors.ErrorCode {
	var vErr *wizard.ValidationError
	switch {
	case errors.Is(err, errInvalidBody):
		return apperrors.ErrCodeInvalidInput
	case errors.Is(err, session.ErrSessionNotFound):
		return apperrors.ErrCodeSessionNotFound
	case errors.Is(err, jobs.ErrJobNotFound):
		return apperrors.ErrCodeJobNotFound
	case errors.Is(err, templates.ErrTemplateNotFound):
		return apperrors.ErrCodeTemplateNotFound
	case errors.As(err, &vErr):
		return apperrors.ErrCodeApplicationValidationFailed
	case errors.Is(err, wizard.ErrSubmissionFailed):
		return apperrors.ErrCodeSubmissionFailed
	case errors.Is(err, jobs.ErrJobQueryFailed):
		return apperrors.ErrCodeSearchQueryFailed
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return apperrors.ErrCodeInternal
	}
	return apperrors.ErrorCode(rootSentinel(err).Error())
}

// rootSentinel is the innermost error of the chain, e.g. TEMPLATE_REQUIRED.
func rootSentinel(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, err error, notices ...models.Notice) {
	status := HTTPStatus(err)
	body := ErrorResponse{Error: err.Error(), Code: string(errorCode(err)), Notices: notices}

	var vErr *wizard.ValidationError
	var subErr *wizard.SubmissionError
	switch {
	case errors.As(err, &vErr):
		body.Error = "Application validation failed"
		body.Details = vErr.Errors
	case errors.As(err, &subErr):
		body.Error = subErr.Message
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{"error": err.Error()})
		body.Error = "Internal server error"
	}
	s.jsonResponse(w, status, body)
}

func extractValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{"invalid request"}
	}
	out := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		out = append(out, fmt.Sprintf("%s: %s", ve.Field(), ve.Tag()))
	}
	return out
}
