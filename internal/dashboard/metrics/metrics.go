package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for dashboard builds.
type Metrics struct {
	BuildDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinquest_dashboard_build_duration_seconds",
			Help:    "Duration of a full dashboard aggregation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveBuild records the duration of one dashboard build.
func (m *Metrics) ObserveBuild(d time.Duration) {
	if m != nil {
		m.BuildDuration.Observe(d.Seconds())
	}
}
