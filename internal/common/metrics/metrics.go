// internal/common/metrics/metrics.go
package metrics

import (
	"time"

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

	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Candidates passed through the scoring function",
		},
		[]string{"source"},
	)

	MatchesReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_matches_returned",
			Help:    "Size of the ranked shortlist returned per request",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
		[]string{"source"},
	)

	RankCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_rank_cache_total",
			Help: "Rank cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// ObserveJob records the outcome of one worker job. An empty errorCode marks
// the job as completed.
func ObserveJob(taskType string, started time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

// ObserveRanking records one ranking run.
func ObserveRanking(source string, scored, returned int) {
	CandidatesScored.WithLabelValues(source).Add(float64(scored))
	MatchesReturned.WithLabelValues(source).Observe(float64(returned))
}
