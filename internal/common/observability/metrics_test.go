package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordSubmission(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))

	obs, err := newWithProvider(provider, "test")
	require.NoError(t, err)

	ctx := context.Background()
	obs.RecordSubmission(ctx, "success", 120*time.Millisecond)
	obs.RecordSubmission(ctx, "failure", 40*time.Millisecond)
	obs.RecordJobProcessed(ctx, "select-template", "completed")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
		if m.Name == "applications.submitted" {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			assert.Equal(t, int64(2), total)
		}
	}
	assert.True(t, names["applications.submit.duration"])
	assert.True(t, names["jobs.processed"])

	require.NoError(t, obs.Shutdown(ctx))
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordSubmission(context.Background(), "success", time.Second)
		obs.RecordJobProcessed(context.Background(), "x", "completed")
		_ = obs.Shutdown(context.Background())
	})
}
