// Package gateway implements the read-path cache-aside core: tiered
// lookups over a volatile and a durable cache in front of the upstream
// data layer, with per-key single-flight coalescing.
package gateway

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

// Class describes a cacheable data class: its sliding TTL in the
// volatile tier and whether the durable tier participates at all.
// Catalog and root history stay volatile-only: the catalog is cheap to
// re-query and a stale root hash served from disk would defeat the 30s
// freshness window.
type Class struct {
	Name    string
	TTL     time.Duration
	Durable bool
}

var (
	ClassWellKnownAddress = Class{Name: "well-known-address", TTL: 24 * time.Hour, Durable: false}
	ClassCatalog          = Class{Name: "catalog", TTL: 15 * time.Minute, Durable: false}
	ClassRootHistory      = Class{Name: "root-history", TTL: 30 * time.Second, Durable: false}
	ClassKeys             = Class{Name: "keys", TTL: 15 * time.Minute, Durable: true}
	ClassValue            = Class{Name: "value", TTL: 15 * time.Minute, Durable: true}
	ClassProof            = Class{Name: "proof", TTL: 15 * time.Minute, Durable: true}
)

// CacheKey derives the deterministic key for a class and its
// identifying arguments.
func CacheKey(class Class, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, class.Name)
	parts = append(parts, args...)
	return strings.Join(parts, "|")
}

// OriginFunc fetches a value from the upstream node.
type OriginFunc func(ctx context.Context) (string, error)

// Lookup is the generic cache-aside primitive. Fetch order is volatile
// tier, durable tier (with promotion), then a single-flighted origin
// call that writes through to both tiers.
type Lookup struct {
	volatile      types.VolatileTier
	durable       types.DurableTier
	logger        types.Logger
	metrics       types.MetricsManager
	originTimeout time.Duration
	group         singleflight.Group
}

func NewLookup(volatile types.VolatileTier, durable types.DurableTier, logger types.Logger, metrics types.MetricsManager, originTimeout time.Duration) *Lookup {
	if originTimeout <= 0 {
		originTimeout = 30 * time.Second
	}

	return &Lookup{
		volatile:      volatile,
		durable:       durable,
		logger:        logger,
		metrics:       metrics,
		originTimeout: originTimeout,
	}
}

// Fetch resolves one cache key. The returned error is non-nil only
// when the caller's context was cancelled; every origin failure is
// absorbed into a "not found" result.
func (l *Lookup) Fetch(ctx context.Context, class Class, key string, origin OriginFunc) (string, bool, error) {
	if value, ok := l.volatile.Get(key); ok {
		l.record(class, "volatile_hit")
		return value, true, nil
	}

	if class.Durable && l.durable != nil {
		value, ok, err := l.durable.Get(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return "", false, ctx.Err()
			}
			l.logger.Error("Durable tier read failed",
				zap.String("class", class.Name),
				zap.String("key", key),
				zap.Error(err))
		} else if ok {
			// Promote the cold copy; no origin call needed.
			if err := l.volatile.Set(key, value, class.TTL); err != nil {
				l.logger.Warn("Failed to promote durable entry",
					zap.String("key", key), zap.Error(err))
			}
			l.record(class, "durable_hit")
			return value, true, nil
		}
	}

	value, err := l.fetchOrigin(ctx, class, key, origin)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		if types.IsError(err, types.ErrEmptyRootHistory) {
			l.logger.Debug("Origin returned no data",
				zap.String("class", class.Name),
				zap.String("key", key))
		} else {
			l.logger.Error("Origin fetch failed",
				zap.String("class", class.Name),
				zap.String("key", key),
				zap.Error(err))
		}
		l.record(class, "origin_error")
		return "", false, nil
	}

	l.record(class, "origin_fetch")
	return value, true, nil
}

// fetchOrigin coalesces concurrent misses for the same key into one
// upstream call. All waiters observe the same outcome, failures
// included; the in-flight slot is released only after delivery.
func (l *Lookup) fetchOrigin(ctx context.Context, class Class, key string, origin OriginFunc) (string, error) {
	result, err, _ := l.group.Do(key, func() (interface{}, error) {
		originCtx, cancel := context.WithTimeout(ctx, l.originTimeout)
		defer cancel()

		value, err := origin(originCtx)
		if err != nil {
			return nil, err
		}

		// Write-through: the durable tier keeps the cold copy with no
		// expiry, the volatile tier arms the class TTL.
		if class.Durable && l.durable != nil {
			if err := l.durable.Set(ctx, key, value); err != nil {
				l.logger.Warn("Durable tier write failed",
					zap.String("key", key), zap.Error(err))
			}
		}

		if err := l.volatile.Set(key, value, class.TTL); err != nil {
			l.logger.Warn("Volatile tier write failed",
				zap.String("key", key), zap.Error(err))
		}

		return value, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (l *Lookup) record(class Class, result string) {
	if l.metrics == nil {
		return
	}
	l.metrics.Counter("gateway_lookups_total", map[string]string{
		"class":  class.Name,
		"result": result,
	}).Inc()
}
