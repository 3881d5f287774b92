package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts ledger writes.
type Metrics struct {
	Mutations *prometheus.CounterVec
}

// New registers the ledger collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coinquest_ledger_mutations_total",
			Help: "Committed ledger writes by entity and operation",
		}, []string{"entity", "op"}), // op: "create", "update", "delete"
	}
}

// IncrementMutation counts one committed write.
func (m *Metrics) IncrementMutation(entity, op string) {
	if m != nil {
		m.Mutations.WithLabelValues(entity, op).Inc()
	}
}
