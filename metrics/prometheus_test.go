package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/logger"
	"github.com/saiset-co/sai-datalayer-gateway/types"
)

func newTestMetrics(t *testing.T) types.MetricsManager {
	t.Helper()

	m, err := NewPrometheusMetrics(logger.NewZapWrapper(zap.NewNop()))
	require.NoError(t, err)
	return m
}

func TestCounterIncrement(t *testing.T) {
	m := newTestMetrics(t)

	counter := m.Counter("requests_total", map[string]string{"class": "keys"})
	counter.Inc()
	counter.Add(2)

	assert.Equal(t, float64(3), counter.Get())
}

func TestCounterLabelsIsolateSeries(t *testing.T) {
	m := newTestMetrics(t)

	m.Counter("lookups_total", map[string]string{"result": "hit"}).Inc()
	m.Counter("lookups_total", map[string]string{"result": "miss"}).Inc()
	m.Counter("lookups_total", map[string]string{"result": "hit"}).Inc()

	assert.Equal(t, float64(2), m.Counter("lookups_total", map[string]string{"result": "hit"}).Get())
	assert.Equal(t, float64(1), m.Counter("lookups_total", map[string]string{"result": "miss"}).Get())
}

func TestGaugeSet(t *testing.T) {
	m := newTestMetrics(t)

	gauge := m.Gauge("cache_entries", nil)
	gauge.Set(10)
	gauge.Inc()
	gauge.Dec()

	assert.Equal(t, float64(10), gauge.Get())
}

func TestHistogramObserveDuration(t *testing.T) {
	m := newTestMetrics(t)

	h := m.Histogram("request_duration_seconds", nil, map[string]string{"route": "value"})
	h.Observe(0.25)
	h.ObserveDuration(time.Now().Add(-time.Millisecond))

	out, err := m.Export()
	require.NoError(t, err)
	assert.Contains(t, string(out), "request_duration_seconds_count")
}

func TestExportTextFormat(t *testing.T) {
	m := newTestMetrics(t)
	m.Counter("lookups_total", map[string]string{"result": "hit"}).Inc()

	out, err := m.Export()
	require.NoError(t, err)
	assert.Contains(t, string(out), `lookups_total{result="hit"} 1`)
}

func TestLifecycle(t *testing.T) {
	m := newTestMetrics(t)

	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())
	assert.ErrorIs(t, m.Start(), types.ErrServerAlreadyRunning)
	require.NoError(t, m.Stop())
	assert.False(t, m.IsRunning())
}
