// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "application-builder/internal/common/errors"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-notification"
)

var (
	ErrRecipientNotFound       = errors.New("RECIPIENT_NOT_FOUND")
	ErrUnknownNotificationType = errors.New("UNKNOWN_NOTIFICATION_TYPE")
	ErrNotificationSendFailed  = errors.New("NOTIFICATION_SEND_FAILED")
	ErrRecipientLookupFailed   = errors.New("RECIPIENT_LOOKUP_FAILED")
)

// EmailSender and SMSSender are satisfied by the aws package senders. A nil
// sender disables its channel.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

type SMSSender interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	db         *sql.DB
	email      EmailSender
	sms        SMSSender
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		email:      email,
		sms:        sms,
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
	case errors.Is(err, ErrRecipientNotFound):
		return apperrors.New(apperrors.ErrCodeRecipientNotFound, "Notification recipient not found", "recipientId: "+input.RecipientID)
	case errors.Is(err, ErrUnknownNotificationType):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrRecipientLookupFailed):
		return apperrors.NewDatabaseError("recipient lookup", err)
	default:
		return apperrors.NewNotificationSendFailedError(input.NotificationType, err)
	}
}

type recipient struct {
	Name  string
	Email string
	Phone string
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tmpl, ok := notificationTemplates[input.NotificationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNotificationType, input.NotificationType)
	}

	rcpt, err := h.lookupRecipient(ctx, input.RecipientID)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"recipientName": rcpt.Name,
		"applicationId": input.ApplicationID,
		"jobTitle":      input.JobTitle,
		"companyName":   input.CompanyName,
	}
	for k, v := range input.Metadata {
		if _, reserved := data[k]; !reserved {
			data[k] = v
		}
	}
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	output := &Output{
		NotificationID: uuid.New().String(),
		EmailStatus:    StatusDisabled,
		SMSStatus:      StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}
	var sendErrs []string

	switch {
	case h.email == nil:
	case rcpt.Email == "":
		output.EmailStatus = StatusSkipped
	default:
		if _, err := h.email.Send(ctx, rcpt.Email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{"error": err, "recipientId": input.RecipientID})
			output.EmailStatus = StatusFailed
			sendErrs = append(sendErrs, "email: "+err.Error())
		} else {
			output.EmailStatus = StatusSent
		}
	}

	switch {
	case h.sms == nil:
	case input.Priority != PriorityHigh || rcpt.Phone == "":
		output.SMSStatus = StatusSkipped
	default:
		if _, err := h.sms.Send(ctx, rcpt.Phone, body); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{"error": err, "recipientId": input.RecipientID})
			output.SMSStatus = StatusFailed
			sendErrs = append(sendErrs, "sms: "+err.Error())
		} else {
			output.SMSStatus = StatusSent
		}
	}

	switch {
	case len(sendErrs) > 0:
		output.Status = StatusFailed
		if h.config.RetryOnFailure {
			return nil, fmt.Errorf("%w: %s", ErrNotificationSendFailed, strings.Join(sendErrs, "; "))
		}
	case output.EmailStatus == StatusSent || output.SMSStatus == StatusSent:
		output.Status = StatusSent
	default:
		output.Status = StatusDisabled
	}

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"status":         output.Status,
		"emailStatus":    output.EmailStatus,
		"smsStatus":      output.SMSStatus,
	})
	return output, nil
}

func (h *Handler) lookupRecipient(ctx context.Context, id string) (*recipient, error) {
	var (
		r            recipient
		email, phone sql.NullString
	)
	err := h.db.QueryRowContext(ctx, `SELECT full_name, email, phone FROM users WHERE id = $1`, id).
		Scan(&r.Name, &email, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecipientLookupFailed, err)
	}
	r.Email, r.Phone = email.String, phone.String
	return &r, nil
}

// renderTemplate replaces {{key}} placeholders and drops any left over.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
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
