// Package errors provides the structured error model shared by the session
// API and the Zeebe workers, and its mapping onto BPMN errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeParseError   ErrorCode = "PARSE_ERROR"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"

	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeDuplicateApplication        ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeSubmissionFailed            ErrorCode = "SUBMISSION_FAILED"

	ErrCodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheUnavailable     ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeEventPublishFailed   ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeRecipientNotFound    ErrorCode = "RECIPIENT_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// retryPolicy lists the technical codes the workflow engine may retry and
// how many attempts each gets. Codes absent here are business errors.
var retryPolicy = map[ErrorCode]int{
	ErrCodeDatabaseError:          3,
	ErrCodeDatabaseInsertFailed:   3,
	ErrCodeSearchQueryFailed:      3,
	ErrCodeNotificationSendFailed: 3,
	ErrCodeEventPublishFailed:     3,
	ErrCodeSubmissionFailed:       2,
	ErrCodeTimeout:                2,
	ErrCodeCacheUnavailable:       1,
}

// ==========================
// 2. Standard Error
// ==========================

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// New builds a StandardError whose retryability follows the code's policy.
func New(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
}

// Wrap is New with cause kept for errors.Is/As and its text used as details.
func Wrap(code ErrorCode, message string, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	e := New(code, message, details)
	e.cause = cause
	return e
}

func NewTemplateNotFoundError(templateID string) *StandardError {
	return New(ErrCodeTemplateNotFound, "Cover letter template not found", "templateId: "+templateID)
}

func NewJobNotFoundError(jobID string) *StandardError {
	return New(ErrCodeJobNotFound, "Job posting not found", "jobId: "+jobID)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return New(ErrCodeSessionNotFound, "Application session not found", "sessionId: "+sessionID)
}

func NewApplicationValidationFailedError(problems []string) *StandardError {
	return New(ErrCodeApplicationValidationFailed, "Application data validation failed", strings.Join(problems, "; ")).
		WithMetadata("errors", problems)
}

func NewDuplicateApplicationError(jobID, studentID string) *StandardError {
	return New(ErrCodeDuplicateApplication, "Application already exists",
		fmt.Sprintf("jobId: %s, studentId: %s", jobID, studentID))
}

func NewInvalidInputError(details string) *StandardError {
	return New(ErrCodeInvalidInput, "Invalid job input", details)
}

func NewDatabaseError(operation string, err error) *StandardError {
	return Wrap(ErrCodeDatabaseError, "Database operation failed: "+operation, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return Wrap(ErrCodeNotificationSendFailed, "Notification delivery failed on "+channel, err)
}

// ==========================
// 3. BPMN Integration
// ==========================

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a failed or thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount returns how many engine retries a code is allowed.
func GetRetryCount(code ErrorCode) int {
	return retryPolicy[code]
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"timestamp": stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// AsStandard unwraps err to a StandardError, wrapping unknown errors as
// INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return Wrap(ErrCodeInternal, "Unexpected error", err)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "APPLICATION") || strings.Contains(codeStr, "SUBMISSION"):
		return "APPLICATION"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "RECIPIENT") || strings.Contains(codeStr, "EVENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.HasSuffix(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	default:
		return "OTHER"
	}
}
