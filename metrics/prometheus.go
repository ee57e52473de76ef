package metrics

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

type PrometheusMetrics struct {
	logger     types.Logger
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	mu         sync.RWMutex
	running    int32
}

func NewPrometheusMetrics(logger types.Logger) (types.MetricsManager, error) {
	registry := prometheus.NewRegistry()

	return &PrometheusMetrics{
		logger:     logger,
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}, nil
}

func (p *PrometheusMetrics) Start() error {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return types.ErrServerAlreadyRunning
	}
	p.logger.Info("Prometheus metrics started")
	return nil
}

func (p *PrometheusMetrics) Stop() error {
	atomic.StoreInt32(&p.running, 0)
	return nil
}

func (p *PrometheusMetrics) IsRunning() bool {
	return atomic.LoadInt32(&p.running) == 1
}

func (p *PrometheusMetrics) Counter(name string, labels map[string]string) types.Counter {
	labelNames, labelValues := splitLabels(labels)
	key := vecKey(name, labelNames)

	p.mu.Lock()
	vec, exists := p.counters[key]
	if !exists {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labelNames)
		if err := p.registry.Register(vec); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				vec = are.ExistingCollector.(*prometheus.CounterVec)
			}
		}
		p.counters[key] = vec
	}
	p.mu.Unlock()

	return &promCounter{counter: vec.WithLabelValues(labelValues...)}
}

func (p *PrometheusMetrics) Gauge(name string, labels map[string]string) types.Gauge {
	labelNames, labelValues := splitLabels(labels)
	key := vecKey(name, labelNames)

	p.mu.Lock()
	vec, exists := p.gauges[key]
	if !exists {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labelNames)
		if err := p.registry.Register(vec); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				vec = are.ExistingCollector.(*prometheus.GaugeVec)
			}
		}
		p.gauges[key] = vec
	}
	p.mu.Unlock()

	return &promGauge{gauge: vec.WithLabelValues(labelValues...)}
}

func (p *PrometheusMetrics) Histogram(name string, buckets []float64, labels map[string]string) types.Histogram {
	labelNames, labelValues := splitLabels(labels)
	key := vecKey(name, labelNames)

	p.mu.Lock()
	vec, exists := p.histograms[key]
	if !exists {
		if len(buckets) == 0 {
			buckets = prometheus.DefBuckets
		}
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Buckets: buckets}, labelNames)
		if err := p.registry.Register(vec); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				vec = are.ExistingCollector.(*prometheus.HistogramVec)
			}
		}
		p.histograms[key] = vec
	}
	p.mu.Unlock()

	return &promHistogram{observer: vec.WithLabelValues(labelValues...)}
}

// Export renders the registry in the text exposition format.
func (p *PrometheusMetrics) Export() ([]byte, error) {
	families, err := p.registry.Gather()
	if err != nil {
		return nil, types.WrapError(err, "failed to gather metrics")
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return nil, types.WrapError(err, "failed to encode metric family")
		}
	}

	return buf.Bytes(), nil
}

func splitLabels(labels map[string]string) ([]string, []string) {
	if len(labels) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]string, len(names))
	for i, name := range names {
		values[i] = labels[name]
	}

	return names, values
}

func vecKey(name string, labelNames []string) string {
	return fmt.Sprintf("%s{%s}", name, strings.Join(labelNames, ","))
}

type promCounter struct {
	counter prometheus.Counter
}

func (c *promCounter) Inc()              { c.counter.Inc() }
func (c *promCounter) Add(value float64) { c.counter.Add(value) }

func (c *promCounter) Get() float64 {
	metric := &dto.Metric{}
	if err := c.counter.Write(metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

type promGauge struct {
	gauge prometheus.Gauge
}

func (g *promGauge) Set(value float64) { g.gauge.Set(value) }
func (g *promGauge) Inc()              { g.gauge.Inc() }
func (g *promGauge) Dec()              { g.gauge.Dec() }

func (g *promGauge) Get() float64 {
	metric := &dto.Metric{}
	if err := g.gauge.Write(metric); err != nil {
		return 0
	}
	return metric.GetGauge().GetValue()
}

type promHistogram struct {
	observer prometheus.Observer
}

func (h *promHistogram) Observe(value float64) { h.observer.Observe(value) }

func (h *promHistogram) ObserveDuration(start time.Time) {
	h.observer.Observe(time.Since(start).Seconds())
}
