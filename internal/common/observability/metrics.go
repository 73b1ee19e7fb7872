package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OpenTelemetry meter provider. Instruments are
// exported through the default Prometheus registry next to the promauto
// collectors.
type Observability struct {
	meterProvider      *metric.MeterProvider
	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
	jobCounter         otelmetric.Int64Counter
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	return newWithProvider(provider, serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) (*Observability, error) {
	meter := provider.Meter(serviceName)

	submissionCounter, err := meter.Int64Counter(
		"applications.submitted",
		otelmetric.WithDescription("Application submissions by outcome"),
	)
	if err != nil {
		return nil, err
	}

	submissionDuration, err := meter.Float64Histogram(
		"applications.submit.duration",
		otelmetric.WithDescription("Time spent waiting on the submission collaborator"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	jobCounter, err := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Zeebe jobs processed"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:      provider,
		submissionCounter:  submissionCounter,
		submissionDuration: submissionDuration,
		jobCounter:         jobCounter,
	}, nil
}

// RecordSubmission is safe on a nil receiver.
func (o *Observability) RecordSubmission(ctx context.Context, outcome string, took time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("outcome", outcome))
	o.submissionCounter.Add(ctx, 1, attrs)
	o.submissionDuration.Record(ctx, float64(took.Milliseconds()), attrs)
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
