package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"application-builder/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, "topology", func(context.Context) error {
		calls++
		if calls < 3 {
			return stderrors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, "create-instance", func(context.Context) error {
		calls++
		return stderrors.New("rpc error: code = NotFound desc = process not found")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestExecuteWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, "create-instance", func(context.Context) error {
		calls++
		return stderrors.New("context deadline exceeded")
	})

	require.Error(t, err)
	assert.Equal(t, fastRetry.MaxRetries+1, calls)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTimeout))
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(stderrors.New("Unavailable: broker unreachable")))
	assert.True(t, isRetryableZeebeError(stderrors.New("RESOURCE_EXHAUSTED")))
	assert.False(t, isRetryableZeebeError(stderrors.New("invalid argument")))
}

// ==========================
// Input guard
// ==========================

var guardSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"jobId"},
}

func TestGuardInput_PassesValidVariables(t *testing.T) {
	called := false
	handler := GuardInput(guardSchema, func(worker.JobClient, entities.Job) { called = true },
		func(context.Context, worker.JobClient, entities.Job, error) { t.Fatal("unexpected rejection") })

	handler(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: `{"jobId":"job-1"}`}})
	assert.True(t, called)
}

func TestGuardInput_RejectsInvalidVariables(t *testing.T) {
	var rejected error
	handler := GuardInput(guardSchema, func(worker.JobClient, entities.Job) { t.Fatal("handler must not run") },
		func(_ context.Context, _ worker.JobClient, _ entities.Job, err error) { rejected = err })

	handler(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: `{}`}})
	require.Error(t, rejected)
	assert.True(t, errors.HasCode(rejected, errors.ErrCodeInvalidInput))
	assert.Contains(t, rejected.Error(), "jobId")
}

func TestGuardInput_NoSchemaReturnsHandler(t *testing.T) {
	called := false
	handler := GuardInput(nil, func(worker.JobClient, entities.Job) { called = true }, nil)
	handler(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{}})
	assert.True(t, called)
}
