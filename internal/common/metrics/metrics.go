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
)

// Quiz session metrics.
var (
	QuizSessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz sessions handed out, by origin (fresh, resumed, existing)",
		},
		[]string{"origin"},
	)

	QuizSessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_completed_total",
			Help: "Quiz sessions that reached the final slot",
		},
	)

	QuizResponsesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_responses_submitted_total",
			Help: "Accepted quiz answers by question format",
		},
		[]string{"format"},
	)

	QuizQuestionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_question_fallbacks_total",
			Help: "Questions served from the static table instead of the generator",
		},
		[]string{"reason"},
	)

	QuizInsightFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_insight_fallbacks_total",
			Help: "Final insight sets built entirely from rule-based fallbacks",
		},
	)
)

// Matching metrics.
var (
	MatchingRankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_rank_duration_seconds",
			Help:    "Time spent ranking brokers for one user",
			Buckets: prometheus.DefBuckets,
		},
	)

	MatchingCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_candidates",
			Help:    "Eligible brokers scored per ranking",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	MatchingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_broker_cache_lookups_total",
			Help: "Broker directory cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
