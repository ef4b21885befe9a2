// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rti_routing_decisions_total",
			Help: "Routing decisions by resolution tier and jurisdiction class",
		},
		[]string{"tier", "jurisdiction"},
	)

	EscalationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rti_escalation_actions_total",
			Help: "Escalation check outcomes by action",
		},
		[]string{"action"},
	)

	GeneratorFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rti_generator_fallbacks_total",
			Help: "Times the deterministic fallback replaced generator output",
		},
		[]string{"kind", "reason"},
	)
)
