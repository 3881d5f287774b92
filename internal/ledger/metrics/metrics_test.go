package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncrementMutation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementMutation("category", "create")
	m.IncrementMutation("category", "create")
	m.IncrementMutation("budget", "delete")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("category", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("budget", "delete")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.IncrementMutation("merchant", "update") })
}
