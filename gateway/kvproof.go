package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

// KeyValueProofGateway serves key listings, raw values and merkle
// proofs through the tiered lookup, both cache tiers enabled. Every
// call signals the notifier for its store, hit or miss or failure.
type KeyValueProofGateway struct {
	lookup   *Lookup
	client   types.DataLayerClient
	notifier types.NotifierSink
	logger   types.Logger
}

func NewKeyValueProofGateway(lookup *Lookup, client types.DataLayerClient, notifier types.NotifierSink, logger types.Logger) *KeyValueProofGateway {
	return &KeyValueProofGateway{
		lookup:   lookup,
		client:   client,
		notifier: notifier,
		logger:   logger,
	}
}

func (g *KeyValueProofGateway) Keys(ctx context.Context, storeID string) ([]string, bool, error) {
	defer g.signal(storeID)

	raw, found, err := g.lookup.Fetch(ctx, ClassKeys, CacheKey(ClassKeys, storeID), func(octx context.Context) (string, error) {
		keys, err := g.client.GetKeys(octx, storeID, "")
		if err != nil {
			return "", err
		}
		encoded, err := utils.Marshal(keys)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	})
	if err != nil || !found {
		return nil, false, err
	}

	var keys []string
	if err := utils.Unmarshal([]byte(raw), &keys); err != nil {
		g.logger.Error("Corrupt keys cache entry",
			zap.String("store_id", storeID), zap.Error(err))
		return nil, false, nil
	}

	return keys, true, nil
}

// Value fetches the hex-encoded value for a key. The requested root
// hash is forwarded to the origin but kept out of the cache key: the
// most recently cached value wins regardless of requested root.
func (g *KeyValueProofGateway) Value(ctx context.Context, storeID, hexKey, rootHash string) (string, bool, error) {
	defer g.signal(storeID)

	return g.lookup.Fetch(ctx, ClassValue, CacheKey(ClassValue, storeID, hexKey), func(octx context.Context) (string, error) {
		return g.client.GetValue(octx, storeID, hexKey, rootHash)
	})
}

func (g *KeyValueProofGateway) Proof(ctx context.Context, storeID, hexKey string) (string, bool, error) {
	defer g.signal(storeID)

	return g.lookup.Fetch(ctx, ClassProof, CacheKey(ClassProof, storeID, hexKey), func(octx context.Context) (string, error) {
		return g.client.GetProof(octx, storeID, []string{hexKey})
	})
}

// signal runs on every terminating path. The notifier contract is
// best effort; a panicking sink must not take the read path down.
func (g *KeyValueProofGateway) signal(storeID string) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Notifier sink panicked",
				zap.String("store_id", storeID),
				zap.Any("panic", r))
		}
	}()

	if g.notifier != nil {
		g.notifier.Register(storeID)
	}
}
