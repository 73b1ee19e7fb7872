// internal/workers/application/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"errors"
	"testing"

	apperrors "application-builder/internal/common/errors"
	"application-builder/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type sentMessage struct {
	to      string
	subject string
	body    string
}

type fakeEmail struct {
	sent []sentMessage
	err  error
}

func (f *fakeEmail) Send(_ context.Context, to, subject, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, subject: subject, body: body})
	return "ses-1", nil
}

type fakeSMS struct {
	sent []sentMessage
	err  error
}

func (f *fakeSMS) Send(_ context.Context, phone, message string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{to: phone, body: message})
	return "sns-1", nil
}

func createInput(priority string) *Input {
	return &Input{
		RecipientID:      "user-1",
		NotificationType: TypeApplicationSubmitted,
		ApplicationID:    "app-77",
		JobTitle:         "QA Engineer",
		CompanyName:      "Vandelay",
		Priority:         priority,
	}
}

func expectRecipient(mock sqlmock.Sqlmock, email, phone interface{}) {
	mock.ExpectQuery(`SELECT full_name, email, phone FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"full_name", "email", "phone"}).AddRow("Kim Lee", email, phone))
}

func newTestHandler(t *testing.T, config *Config, email EmailSender, sms SMSSender) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	if config == nil {
		config = LoadConfig()
	}
	return NewHandler(config, db, email, sms, logger.NewTestLogger(t)), mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_EmailAndSMS(t *testing.T) {
	email, sms := &fakeEmail{}, &fakeSMS{}
	handler, mock := newTestHandler(t, nil, email, sms)
	expectRecipient(mock, "kim@example.com", "+14155550100")

	output, err := handler.Execute(context.Background(), createInput(PriorityHigh))

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, StatusSent, output.EmailStatus)
	assert.Equal(t, StatusSent, output.SMSStatus)
	assert.NotEmpty(t, output.NotificationID)

	require.Len(t, email.sent, 1)
	assert.Equal(t, "kim@example.com", email.sent[0].to)
	assert.Equal(t, "Your application for QA Engineer was submitted", email.sent[0].subject)
	assert.Contains(t, email.sent[0].body, "Hi Kim Lee")
	assert.Contains(t, email.sent[0].body, "app-77")
	assert.NotContains(t, email.sent[0].body, "{{")
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+14155550100", sms.sent[0].to)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SMSOnlyForHighPriority(t *testing.T) {
	email, sms := &fakeEmail{}, &fakeSMS{}
	handler, mock := newTestHandler(t, nil, email, sms)
	expectRecipient(mock, "kim@example.com", "+14155550100")

	output, err := handler.Execute(context.Background(), createInput("normal"))

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, StatusSkipped, output.SMSStatus)
	assert.Empty(t, sms.sent)
}

func TestHandler_Execute_ChannelsDisabled(t *testing.T) {
	handler, mock := newTestHandler(t, nil, nil, nil)
	expectRecipient(mock, "kim@example.com", nil)

	output, err := handler.Execute(context.Background(), createInput(PriorityHigh))

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Equal(t, StatusDisabled, output.EmailStatus)
	assert.Equal(t, StatusDisabled, output.SMSStatus)
}

func TestHandler_Execute_SendFailure(t *testing.T) {
	t.Run("reported as failed", func(t *testing.T) {
		handler, mock := newTestHandler(t, nil, &fakeEmail{err: errors.New("throttled")}, nil)
		expectRecipient(mock, "kim@example.com", nil)

		output, err := handler.Execute(context.Background(), createInput(""))

		require.NoError(t, err)
		assert.Equal(t, StatusFailed, output.Status)
		assert.Equal(t, StatusFailed, output.EmailStatus)
	})

	t.Run("retried when configured", func(t *testing.T) {
		config := LoadConfig()
		config.RetryOnFailure = true
		handler, mock := newTestHandler(t, config, &fakeEmail{err: errors.New("throttled")}, nil)
		expectRecipient(mock, "kim@example.com", nil)

		output, err := handler.Execute(context.Background(), createInput(""))

		assert.Nil(t, output)
		assert.ErrorIs(t, err, ErrNotificationSendFailed)
		stdErr := toStandardError(err, createInput(""))
		assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
		assert.True(t, stdErr.Retryable)
	})
}

func TestHandler_Execute_RecipientErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		handler, mock := newTestHandler(t, nil, &fakeEmail{}, nil)
		mock.ExpectQuery(`SELECT full_name, email, phone FROM users`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"full_name", "email", "phone"}))

		_, err := handler.Execute(context.Background(), createInput(""))

		assert.ErrorIs(t, err, ErrRecipientNotFound)
		assert.Equal(t, apperrors.ErrCodeRecipientNotFound, toStandardError(err, createInput("")).Code)
	})

	t.Run("lookup failure", func(t *testing.T) {
		handler, mock := newTestHandler(t, nil, &fakeEmail{}, nil)
		mock.ExpectQuery(`SELECT full_name, email, phone FROM users`).
			WithArgs("user-1").
			WillReturnError(errors.New("connection reset"))

		_, err := handler.Execute(context.Background(), createInput(""))

		assert.ErrorIs(t, err, ErrRecipientLookupFailed)
		assert.Equal(t, apperrors.ErrCodeDatabaseError, toStandardError(err, createInput("")).Code)
	})
}

func TestHandler_Execute_UnknownType(t *testing.T) {
	handler, mock := newTestHandler(t, nil, &fakeEmail{}, nil)
	input := createInput("")
	input.NotificationType = "birthday"

	_, err := handler.Execute(context.Background(), input)

	assert.ErrorIs(t, err, ErrUnknownNotificationType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderTemplate(t *testing.T) {
	got := renderTemplate("Hi {{name}}, see {{missing}}{{count}}", map[string]interface{}{"name": "Ana", "count": 3})
	assert.Equal(t, "Hi Ana, see 3", got)
}
