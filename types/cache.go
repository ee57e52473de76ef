package types

import (
	"context"
	"time"
)

// VolatileTier is the fast in-process cache. Entries carry a sliding
// expiry that is re-armed on every successful Get.
type VolatileTier interface {
	LifecycleManager
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration) error
	Delete(key string) error
	Len() int
}

// DurableTier is the persistent secondary cache. It stores raw values
// with no expiry of its own; entries survive process restarts and are
// evicted only by the backing store itself.
type DurableTier interface {
	LifecycleManager
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type VolatileEntry struct {
	Value     string
	TTL       time.Duration
	CreatedAt time.Time
	ExpiresAt time.Time
}

type DurableTierCreator func(config interface{}) (DurableTier, error)
