package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

func TestResolveConfiguredName(t *testing.T) {
	r := NewConfigRegistry(map[string]string{"store-a": "Alpha"})

	assert.Equal(t, types.Store{ID: "store-a", DisplayName: "Alpha"}, r.Resolve("store-a"))
}

func TestResolveUnknownStoreAbbreviates(t *testing.T) {
	r := NewConfigRegistry(nil)

	long := "7f5a1c09d3e4b8a2f6c0d1e2a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6"
	store := r.Resolve(long)
	assert.Equal(t, long, store.ID)
	assert.Equal(t, "7f5a1c...b4c5d6", store.DisplayName)
}

func TestResolveShortIDKeptVerbatim(t *testing.T) {
	r := NewConfigRegistry(nil)

	assert.Equal(t, "abc", r.Resolve("abc").DisplayName)
}

func TestSetNameOverridesAtRuntime(t *testing.T) {
	r := NewConfigRegistry(map[string]string{"store-a": "Alpha"})

	r.SetName("store-a", "Renamed")
	assert.Equal(t, "Renamed", r.Resolve("store-a").DisplayName)
}
