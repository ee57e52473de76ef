package types

// Store is a subscribed store together with its resolved display name.
type Store struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// WellKnownInfo is the gateway identity document served under
// /.well-known. Only the address field is cached; the rest is computed
// per request.
type WellKnownInfo struct {
	Address             string `json:"xch_address"`
	KnownStoresEndpoint string `json:"known_stores_endpoint"`
	DonationAddress     string `json:"donation_address"`
	ServerVersion       string `json:"server_version"`
}

// StoreRegistry resolves a store id to its display metadata.
// Implementations are expected to be cheap and local.
type StoreRegistry interface {
	Resolve(storeID string) Store
}

// NotifierSink receives "this store was just read" signals. Register is
// best effort: it must never block the read path and never surface an
// error into it.
type NotifierSink interface {
	Register(storeID string)
}
