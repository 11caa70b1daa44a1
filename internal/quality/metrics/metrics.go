package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for finalized quality audits.
type Metrics struct {
	// Finalized audits by release-gate status
	AuditsSaved *prometheus.CounterVec

	// Issues carried by saved audits, by severity
	Issues *prometheus.CounterVec

	// Dimensions by final state at save time
	Dimensions *prometheus.CounterVec

	SaveLatency prometheus.Histogram

	// Secondary sink deliveries that failed (best-effort path)
	PublishFailures prometheus.Counter
}

// New registers quality metrics with reg (default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		AuditsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizhealth_quality_audits_saved_total",
			Help: "Quality audits persisted, by status",
		}, []string{"status"}),
		Issues: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizhealth_quality_issues_total",
			Help: "Validation issues in persisted audits, by severity",
		}, []string{"severity"}),
		Dimensions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizhealth_quality_dimensions_total",
			Help: "Dimensions in persisted audits, by final state",
		}, []string{"state"}),
		SaveLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizhealth_quality_save_duration_seconds",
			Help:    "Duration of persisting and reporting an audit",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "bizhealth_quality_publish_failures_total",
			Help: "Audits that could not be delivered to at least one secondary sink",
		}),
	}
}

func (m *Metrics) IncrementSaved(status string) {
	if m != nil {
		m.AuditsSaved.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) AddIssues(severity string, n int) {
	if m != nil && n > 0 {
		m.Issues.WithLabelValues(severity).Add(float64(n))
	}
}

func (m *Metrics) AddDimensions(state string, n int) {
	if m != nil && n > 0 {
		m.Dimensions.WithLabelValues(state).Add(float64(n))
	}
}

func (m *Metrics) ObserveSaveLatency(d time.Duration) {
	if m != nil {
		m.SaveLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPublishFailures() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
