package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks fan-out outcomes per sink.
type Metrics struct {
	Published    *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Skipped      *prometheus.CounterVec
	BreakerState *prometheus.GaugeVec
}

// NewMetrics registers publisher metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizhealth_audit_sink_published_total",
			Help: "Records delivered to a secondary sink",
		}, []string{"sink", "kind"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizhealth_audit_sink_failures_total",
			Help: "Records a secondary sink failed to accept",
		}, []string{"sink", "kind"}),
		Skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizhealth_audit_sink_skipped_total",
			Help: "Records not attempted because the sink breaker was open",
		}, []string{"sink", "kind"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bizhealth_audit_sink_breaker_open",
			Help: "Sink circuit breaker state (0=closed, 1=open)",
		}, []string{"sink"}),
	}
}

func (m *Metrics) incPublished(sink, kind string) {
	if m != nil {
		m.Published.WithLabelValues(sink, kind).Inc()
	}
}

func (m *Metrics) incFailure(sink, kind string) {
	if m != nil {
		m.Failures.WithLabelValues(sink, kind).Inc()
	}
}

func (m *Metrics) incSkipped(sink, kind string) {
	if m != nil {
		m.Skipped.WithLabelValues(sink, kind).Inc()
	}
}

func (m *Metrics) setBreakerOpen(sink string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerState.WithLabelValues(sink).Set(v)
}
