package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Observe(OutcomePublished)
	m.Observe(OutcomePublished)
	m.Observe(OutcomeDropped)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Published.WithLabelValues(OutcomePublished)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Published.WithLabelValues(OutcomeDropped)), 0)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.Observe(OutcomeFailed) })
}
