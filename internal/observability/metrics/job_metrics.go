package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	JobOutcomeSuccess = "success"
	JobOutcomeError   = "error"
	JobOutcomeSkipped = "skipped"
)

// JobMetrics tracks background job runs such as the stock reconciler.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	fixed    *prometheus.CounterVec
}

func NewJobMetrics(registerer prometheus.Registerer, cfg Config) (*JobMetrics, error) {
	labels := constLabels(cfg)

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "stockroom_job_runs_total",
		Help:        "Background job runs by outcome.",
		ConstLabels: labels,
	}, []string{"job", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "stockroom_job_duration_seconds",
		Help:        "Background job latency.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: labels,
	}, []string{"job"})
	fixed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "stockroom_job_items_fixed_total",
		Help:        "Rows corrected by background jobs.",
		ConstLabels: labels,
	}, []string{"job", "resource"})

	for _, c := range []prometheus.Collector{runs, duration, fixed} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return &JobMetrics{runs: runs, duration: duration, fixed: fixed}, nil
}

func (m *JobMetrics) ObserveRun(job, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(job, outcome).Inc()
	if outcome != JobOutcomeSkipped {
		m.duration.WithLabelValues(job).Observe(elapsed.Seconds())
	}
}

func (m *JobMetrics) AddFixed(job, resource string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fixed.WithLabelValues(job, resource).Add(float64(n))
}
