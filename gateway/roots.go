package gateway

import (
	"context"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

// RootHistoryResolver serves the most recent root hash of a store.
// Root hashes are the freshness anchor of everything else, so the TTL
// is short and the durable tier is bypassed entirely.
type RootHistoryResolver struct {
	lookup *Lookup
	client types.DataLayerClient
}

func NewRootHistoryResolver(lookup *Lookup, client types.DataLayerClient) *RootHistoryResolver {
	return &RootHistoryResolver{lookup: lookup, client: client}
}

// LastRoot returns the latest committed root hash for the store, or
// absence when the history is empty or the upstream fails.
func (r *RootHistoryResolver) LastRoot(ctx context.Context, storeID string) (string, bool, error) {
	return r.lookup.Fetch(ctx, ClassRootHistory, CacheKey(ClassRootHistory, storeID), func(octx context.Context) (string, error) {
		history, err := r.client.GetRootHistory(octx, storeID)
		if err != nil {
			return "", err
		}
		if len(history) == 0 {
			return "", types.ErrEmptyRootHistory
		}
		return history[len(history)-1].RootHash, nil
	})
}
