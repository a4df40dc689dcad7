package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	gradingRunsTotal     *prometheus.CounterVec
	gradingScorePercent  prometheus.Histogram
	gradingDurationTotal prometheus.Histogram
	uploadsTotal         *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathgrader_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mathgrader_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathgrader_http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		gradingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathgrader_grading_runs_total",
			Help: "Grading attempts partitioned by outcome.",
		}, []string{"outcome"})

		gradingScorePercent = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mathgrader_grading_score_percent",
			Help:    "Distribution of graded submission percentages.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		})

		gradingDurationTotal = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mathgrader_grading_duration_seconds",
			Help:    "Time spent scoring and persisting a submission.",
			Buckets: []float64{0.1, 0.5, 1, 2, 3, 5, 10},
		})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathgrader_submission_uploads_total",
			Help: "Submission image uploads partitioned by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			gradingRunsTotal,
			gradingScorePercent,
			gradingDurationTotal,
			uploadsTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// GradingRuns exposes the grading outcome counter ("graded", "already_graded", "failed").
func GradingRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingRunsTotal
}

// GradingScore exposes the percentage histogram of completed gradings.
func GradingScore() prometheus.Histogram {
	RegisterMetrics()
	return gradingScorePercent
}

// GradingDuration exposes the scoring latency histogram.
func GradingDuration() prometheus.Histogram {
	RegisterMetrics()
	return gradingDurationTotal
}

// Uploads exposes the upload outcome counter.
func Uploads() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}
