// internal/workers/application/create-application-record/handler_test.go
package createapplicationrecord

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "application-builder/internal/common/errors"
	"application-builder/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestInput() *Input {
	return &Input{
		JobID:                  "job-001",
		StudentID:              "student-001",
		CoverLetter:            "Dear Hiring Manager, I would like to apply.",
		SelectedPortfolioItems: []string{"3", "1"},
		AdditionalNotes:        "Available from June",
	}
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHandler(LoadConfig(), db, logger.NewTestLogger(t)), mock
}

func expectJobLookup(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT employer_id FROM jobs WHERE id = \$1`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"employer_id"}).AddRow("employer-9"))
}

func expectNoDuplicate(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("student-001", "job-001", "withdrawn").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
}

func expectApplicationInsert(mock sqlmock.Sqlmock) *sqlmock.ExpectedExec {
	return mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(
			sqlmock.AnyArg(), // application ID (UUID)
			"job-001",
			"student-001",
			"Dear Hiring Manager, I would like to apply.",
			sqlmock.AnyArg(), // custom resume
			"Available from June",
			"submitted",
			sqlmock.AnyArg(), // created_at
		)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectJobLookup(mock)
	expectNoDuplicate(mock)
	mock.ExpectBegin()
	expectApplicationInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO application_portfolio_items`).
		WithArgs(sqlmock.AnyArg(), "3", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO application_portfolio_items`).
		WithArgs(sqlmock.AnyArg(), "1", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("application_created", "application", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.ApplicationID)
	assert.Equal(t, "submitted", output.ApplicationStatus)
	assert.Equal(t, "employer-9", output.EmployerID)
	_, err = time.Parse(time.RFC3339, output.CreatedAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DuplicateApplication(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectJobLookup(mock)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("student-001", "job-001", "withdrawn").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	output, err := handler.Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, ErrDuplicateApplication)
	assert.Contains(t, err.Error(), "application already exists")
	assert.Nil(t, output)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_JobNotFound(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT employer_id FROM jobs`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"employer_id"}))

	_, err := handler.Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DuplicateCheckError(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectJobLookup(mock)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("student-001", "job-001", "withdrawn").
		WillReturnError(errors.New("database connection failed"))

	_, err := handler.Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
	assert.Contains(t, err.Error(), "duplicate check failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertErrorRollsBack(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectJobLookup(mock)
	expectNoDuplicate(mock)
	mock.ExpectBegin()
	expectApplicationInsert(mock).WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	_, err := handler.Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
	assert.Contains(t, err.Error(), "insert failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PortfolioInsertErrorRollsBack(t *testing.T) {
	handler, mock := newTestHandler(t)

	expectJobLookup(mock)
	expectNoDuplicate(mock)
	mock.ExpectBegin()
	expectApplicationInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO application_portfolio_items`).
		WithArgs(sqlmock.AnyArg(), "3", 0).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err := handler.Execute(context.Background(), createTestInput())

	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
	assert.Contains(t, err.Error(), "portfolio item 3")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AuditLogErrorIsNotFatal(t *testing.T) {
	handler, mock := newTestHandler(t)
	input := createTestInput()
	input.SelectedPortfolioItems = nil

	expectJobLookup(mock)
	expectNoDuplicate(mock)
	mock.ExpectBegin()
	expectApplicationInsert(mock).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnError(errors.New("audit table locked"))

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.NotEmpty(t, output.ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler, mock := newTestHandler(t)

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing job", func(in *Input) { in.JobID = "" }},
		{"missing student", func(in *Input) { in.StudentID = "" }},
		{"missing cover letter", func(in *Input) { in.CoverLetter = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			tt.mutate(input)
			_, err := handler.Execute(context.Background(), input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Mapping Tests
// ==========================

func TestToStandardError(t *testing.T) {
	input := createTestInput()
	tests := []struct {
		err       error
		code      apperrors.ErrorCode
		retryable bool
	}{
		{ErrDuplicateApplication, apperrors.ErrCodeDuplicateApplication, false},
		{ErrJobNotFound, apperrors.ErrCodeJobNotFound, false},
		{ErrInvalidInput, apperrors.ErrCodeInvalidInput, false},
		{context.DeadlineExceeded, apperrors.ErrCodeTimeout, true},
		{ErrDatabaseInsertFailed, apperrors.ErrCodeDatabaseInsertFailed, true},
	}
	for _, tt := range tests {
		got := toStandardError(tt.err, input)
		assert.Equal(t, tt.code, got.Code)
		assert.Equal(t, tt.retryable, got.Retryable)
	}
}
