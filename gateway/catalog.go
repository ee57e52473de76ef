package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

const catalogKey = "subscriptions"

// StoreCatalog caches the subscribed store list. Volatile tier only:
// after the 15 minute window the origin is always re-queried instead
// of serving a stale disk copy.
type StoreCatalog struct {
	lookup   *Lookup
	client   types.DataLayerClient
	registry types.StoreRegistry
	logger   types.Logger
}

func NewStoreCatalog(lookup *Lookup, client types.DataLayerClient, registry types.StoreRegistry, logger types.Logger) *StoreCatalog {
	return &StoreCatalog{
		lookup:   lookup,
		client:   client,
		registry: registry,
		logger:   logger,
	}
}

func (c *StoreCatalog) ListStores(ctx context.Context) ([]string, bool, error) {
	raw, found, err := c.lookup.Fetch(ctx, ClassCatalog, CacheKey(ClassCatalog, catalogKey), func(octx context.Context) (string, error) {
		ids, err := c.client.ListSubscriptions(octx)
		if err != nil {
			return "", err
		}
		encoded, err := utils.Marshal(ids)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	})
	if err != nil || !found {
		return nil, false, err
	}

	var ids []string
	if err := utils.Unmarshal([]byte(raw), &ids); err != nil {
		c.logger.Error("Corrupt catalog cache entry", zap.Error(err))
		return nil, false, nil
	}

	return ids, true, nil
}

func (c *StoreCatalog) ListStoresWithNames(ctx context.Context) ([]types.Store, bool, error) {
	ids, found, err := c.ListStores(ctx)
	if err != nil || !found {
		return nil, false, err
	}

	stores := make([]types.Store, len(ids))
	for i, id := range ids {
		stores[i] = c.registry.Resolve(id)
	}

	return stores, true, nil
}
