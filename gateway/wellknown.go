package gateway

import (
	"context"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

const (
	wellKnownAddressKey = "address"
	knownStoresPath     = "/.well-known/known_stores"

	// DonationAddress is fixed and never resolved or cached.
	DonationAddress = "xch1dlgw6hvek6cdtqzc9u2q7hmzqdms4x0g0t4hzjjqnc5c7dsyfv5s0yyp3w"

	// DefaultServerVersion is reported when the build carries no
	// version information.
	DefaultServerVersion = "sai-datalayer-gateway/dev"
)

// WellKnownResolver assembles the gateway identity document. Only the
// receive address is resolved remotely; it is cached for a day in the
// volatile tier.
type WellKnownResolver struct {
	lookup         *Lookup
	resolver       types.AddressResolver
	defaultAddress string
	serverVersion  string
}

func NewWellKnownResolver(lookup *Lookup, resolver types.AddressResolver, defaultAddress, serverVersion string) *WellKnownResolver {
	if serverVersion == "" {
		serverVersion = DefaultServerVersion
	}

	return &WellKnownResolver{
		lookup:         lookup,
		resolver:       resolver,
		defaultAddress: defaultAddress,
		serverVersion:  serverVersion,
	}
}

// Describe returns the identity document. The returned error is
// non-nil only on caller cancellation; a failed address resolution
// falls back to the configured default.
func (w *WellKnownResolver) Describe(ctx context.Context, baseURI string) (types.WellKnownInfo, error) {
	address, found, err := w.lookup.Fetch(ctx, ClassWellKnownAddress, CacheKey(ClassWellKnownAddress, wellKnownAddressKey), func(octx context.Context) (string, error) {
		return w.resolver.ResolveAddress(octx, w.defaultAddress)
	})
	if err != nil {
		return types.WellKnownInfo{}, err
	}
	if !found {
		address = w.defaultAddress
	}

	return types.WellKnownInfo{
		Address:             address,
		KnownStoresEndpoint: baseURI + knownStoresPath,
		DonationAddress:     DonationAddress,
		ServerVersion:       w.serverVersion,
	}, nil
}
