package types

import "context"

// RootEntry is one element of a store's root history, oldest first.
type RootEntry struct {
	RootHash  string `json:"root_hash"`
	Confirmed bool   `json:"confirmed"`
	Timestamp int64  `json:"timestamp"`
}

// DataLayerClient is the remote procedure surface of the upstream
// data layer node. Every method may fail transiently or terminally;
// callers treat all failures the same way.
type DataLayerClient interface {
	ListSubscriptions(ctx context.Context) ([]string, error)
	GetRootHistory(ctx context.Context, storeID string) ([]RootEntry, error)
	GetKeys(ctx context.Context, storeID, rootHash string) ([]string, error)
	GetValue(ctx context.Context, storeID, hexKey, rootHash string) (string, error)
	GetProof(ctx context.Context, storeID string, hexKeys []string) (string, error)
}

// AddressResolver resolves the gateway's receive address, starting
// from a configured default.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, configuredDefault string) (string, error)
}
