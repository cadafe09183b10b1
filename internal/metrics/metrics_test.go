package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("online_score", 200, 0.01)
	m.ObserveRequest("online_score", 200, 0.02)
	m.ObserveRequest("", 422, 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("online_score", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("unknown", "422")))
}

func TestRegisterPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterPool(reg, func() (uint32, uint32) { return 7, 3 })

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		values[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
	}
	assert.Equal(t, 7.0, values["scoring_store_pool_total_conns"])
	assert.Equal(t, 3.0, values["scoring_store_pool_idle_conns"])
}
