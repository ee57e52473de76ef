package cache

import (
	"context"
	"time"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

var customDurableCreators = make(map[string]types.DurableTierCreator)

func RegisterDurableTier(name string, creator types.DurableTierCreator) {
	customDurableCreators[name] = creator
}

// NewDurableTier builds the configured durable backend and wraps it
// with metrics instrumentation.
func NewDurableTier(ctx context.Context, logger types.Logger, metrics types.MetricsManager, config *types.DurableConfig) (types.DurableTier, error) {
	if config == nil || !config.Enabled {
		return nil, types.ErrCacheIsDisabled
	}

	var impl types.DurableTier
	var err error

	switch config.Type {
	case "redis":
		impl, err = NewRedisCache(ctx, logger, config)
	case "clover":
		impl, err = NewCloverCache(ctx, logger, config)
	case "sqlite":
		impl, err = NewSQLiteCache(ctx, logger, config)
	default:
		if creator, exists := customDurableCreators[config.Type]; exists {
			impl, err = creator(config.Config)
		} else {
			return nil, types.Errorf(types.ErrCacheTypeUnknown, "type: %s", config.Type)
		}
	}

	if err != nil {
		return nil, err
	}

	return newInstrumentedDurableTier(metrics, impl), nil
}

// NewVolatileTier builds the in-process tier wrapped with metrics
// instrumentation.
func NewVolatileTier(ctx context.Context, logger types.Logger, metrics types.MetricsManager, config *types.VolatileConfig) (types.VolatileTier, error) {
	impl, err := NewMemoryCache(ctx, logger, config)
	if err != nil {
		return nil, err
	}

	return newInstrumentedVolatileTier(metrics, impl), nil
}

type instrumentedVolatileTier struct {
	impl    types.VolatileTier
	metrics types.MetricsManager
}

func newInstrumentedVolatileTier(metrics types.MetricsManager, impl types.VolatileTier) types.VolatileTier {
	if metrics == nil {
		return impl
	}
	return &instrumentedVolatileTier{impl: impl, metrics: metrics}
}

func (iv *instrumentedVolatileTier) Get(key string) (string, bool) {
	start := time.Now()
	value, exists := iv.impl.Get(key)

	result := "miss"
	if exists {
		result = "hit"
	}

	iv.record("volatile", "get", result, start)
	return value, exists
}

func (iv *instrumentedVolatileTier) Set(key, value string, ttl time.Duration) error {
	start := time.Now()
	err := iv.impl.Set(key, value, ttl)
	iv.record("volatile", "set", outcome(err), start)
	return err
}

func (iv *instrumentedVolatileTier) Delete(key string) error {
	return iv.impl.Delete(key)
}

func (iv *instrumentedVolatileTier) Len() int        { return iv.impl.Len() }
func (iv *instrumentedVolatileTier) Start() error    { return iv.impl.Start() }
func (iv *instrumentedVolatileTier) Stop() error     { return iv.impl.Stop() }
func (iv *instrumentedVolatileTier) IsRunning() bool { return iv.impl.IsRunning() }

func (iv *instrumentedVolatileTier) record(tier, operation, result string, start time.Time) {
	recordTierMetric(iv.metrics, tier, operation, result, start)
}

type instrumentedDurableTier struct {
	impl    types.DurableTier
	metrics types.MetricsManager
}

func newInstrumentedDurableTier(metrics types.MetricsManager, impl types.DurableTier) types.DurableTier {
	if metrics == nil {
		return impl
	}
	return &instrumentedDurableTier{impl: impl, metrics: metrics}
}

func (id *instrumentedDurableTier) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, exists, err := id.impl.Get(ctx, key)

	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case exists:
		result = "hit"
	}

	recordTierMetric(id.metrics, "durable", "get", result, start)
	return value, exists, err
}

func (id *instrumentedDurableTier) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := id.impl.Set(ctx, key, value)
	recordTierMetric(id.metrics, "durable", "set", outcome(err), start)
	return err
}

func (id *instrumentedDurableTier) Start() error    { return id.impl.Start() }
func (id *instrumentedDurableTier) Stop() error     { return id.impl.Stop() }
func (id *instrumentedDurableTier) IsRunning() bool { return id.impl.IsRunning() }

func recordTierMetric(metrics types.MetricsManager, tier, operation, result string, start time.Time) {
	metrics.Counter("cache_operations_total", map[string]string{
		"tier":      tier,
		"operation": operation,
		"result":    result,
	}).Inc()

	metrics.Histogram("cache_operation_duration_seconds",
		[]float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		map[string]string{"tier": tier, "operation": operation},
	).ObserveDuration(start)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
