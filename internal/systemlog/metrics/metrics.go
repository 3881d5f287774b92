package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomePublished = "published"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Metrics tracks system-log fan-out to the event stream.
type Metrics struct {
	Published *prometheus.CounterVec
}

// New registers the system-log collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coinquest_system_logs_published_total",
			Help: "System log entries handed to the event stream by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Observe(outcome string) {
	if m != nil {
		m.Published.WithLabelValues(outcome).Inc()
	}
}
