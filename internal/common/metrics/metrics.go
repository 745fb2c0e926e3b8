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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volunteer_match_attempts_total",
			Help: "Volunteer match attempts by the location tier that decided them",
		},
		[]string{"tier"},
	)

	MatchedVolunteers = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "volunteer_match_size",
			Help:    "Number of volunteers matched per attempt",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"tier"},
	)

	UnresolvedRegionCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_unresolved_codes_total",
			Help: "Project location codes with no entry in the region table",
		},
		[]string{"field"},
	)

	ProjectCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_location_cache_lookups_total",
			Help: "Project location cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Notification deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)
)

func RecordCompleted(taskType string) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}

func RecordFailed(taskType, errorCode string) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
