// Package registry resolves store identifiers to display metadata.
package registry

import (
	"sync"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

// ConfigRegistry is a local, config-backed store registry. Unknown
// stores resolve to an abbreviated id.
type ConfigRegistry struct {
	names map[string]string
	mu    sync.RWMutex
}

func NewConfigRegistry(names map[string]string) *ConfigRegistry {
	if names == nil {
		names = make(map[string]string)
	}
	return &ConfigRegistry{names: names}
}

func (r *ConfigRegistry) Resolve(storeID string) types.Store {
	r.mu.RLock()
	name, ok := r.names[storeID]
	r.mu.RUnlock()

	if !ok || name == "" {
		name = utils.ShortID(storeID)
	}

	return types.Store{ID: storeID, DisplayName: name}
}

// SetName registers or overrides a display name at runtime.
func (r *ConfigRegistry) SetName(storeID, name string) {
	r.mu.Lock()
	r.names[storeID] = name
	r.mu.Unlock()
}
