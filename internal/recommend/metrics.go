package recommend

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the recommendation pipeline.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	CandidatesPulled prometheus.Histogram
	RecordErrors     prometheus.Counter
}

// NewMetrics creates and registers pipeline metrics. Registration runs
// once per process to avoid duplicate collector panics.
//
// Metrics:
//   - recommend_requests_total{status} - Count of pipeline runs
//   - recommend_request_duration_seconds{status} - Pipeline latency
//   - recommend_candidates_pulled - Candidates retrieved per query
//   - recommend_record_errors_total - Failed recommendation log writes
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "recommend_requests_total",
					Help: "Total number of recommendation pipeline runs",
				},
				[]string{"status"}, // "ok" or "error"
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "recommend_request_duration_seconds",
					Help:    "Duration of recommendation pipeline runs in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"status"},
			),
			CandidatesPulled: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "recommend_candidates_pulled",
					Help:    "Number of candidates retrieved from the vehicle index per query",
					Buckets: []float64{0, 1, 5, 10, 20, 50},
				},
			),
			RecordErrors: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "recommend_record_errors_total",
					Help: "Total number of failed recommendation log writes",
				},
			),
		}
	})
	return globalMetrics
}

func (m *Metrics) observe(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(status).Inc()
	m.RequestDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *Metrics) observeCandidates(n int) {
	if m == nil {
		return
	}
	m.CandidatesPulled.Observe(float64(n))
}

func (m *Metrics) observeRecordError() {
	if m == nil {
		return
	}
	m.RecordErrors.Inc()
}
