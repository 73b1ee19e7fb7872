package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_worker_jobs_completed_total",
			Help: "Jobs completed per Zeebe task type",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_worker_jobs_failed_total",
			Help: "Jobs failed per Zeebe task type and error code",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "builder_worker_job_duration_seconds",
			Help:    "Zeebe job processing time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "builder_worker_jobs_active",
			Help: "Jobs currently being handled per task type",
		},
		[]string{"task_type"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "builder_sessions_active",
			Help: "Wizard sessions held in memory",
		},
	)

	StepTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_step_transitions_total",
			Help: "Wizard step changes by origin and destination step",
		},
		[]string{"from", "to"},
	)

	BlockedTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_step_transitions_blocked_total",
			Help: "Navigation attempts rejected by the wizard",
		},
		[]string{"step", "reason"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_validation_failures_total",
			Help: "Application validation rule violations",
		},
		[]string{"rule"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "builder_submissions_total",
			Help: "Application submissions by outcome",
		},
		[]string{"outcome"},
	)
)
