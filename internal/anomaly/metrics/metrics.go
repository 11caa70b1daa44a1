package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for cross-phase anomaly checks.
type Metrics struct {
	Checks       *prometheus.CounterVec
	Anomalies    *prometheus.CounterVec
	CheckLatency prometheus.Histogram
}

// New registers anomaly metrics with reg (default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Checks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizhealth_anomaly_checks_total",
			Help: "Run checks by outcome (passed, failed, skipped)",
		}, []string{"outcome"}),
		Anomalies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizhealth_anomalies_detected_total",
			Help: "Cross-phase anomalies detected, by severity",
		}, []string{"severity"}),
		CheckLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizhealth_anomaly_check_duration_seconds",
			Help:    "Duration of loading artifacts and checking one run",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementCheck(outcome string) {
	if m != nil {
		m.Checks.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) AddAnomalies(severity string, n int) {
	if m != nil && n > 0 {
		m.Anomalies.WithLabelValues(severity).Add(float64(n))
	}
}

func (m *Metrics) ObserveCheckLatency(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}
