package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

func TestLastRootReturnsNewestEntry(t *testing.T) {
	client := newFakeClient()
	client.history["store1"] = []types.RootEntry{
		{RootHash: "0xold", Confirmed: true, Timestamp: 100},
		{RootHash: "0xnew", Confirmed: true, Timestamp: 200},
	}
	roots := NewRootHistoryResolver(newTestLookup(newFakeVolatile(), nil), client)

	root, found, err := roots.LastRoot(context.Background(), "store1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "0xnew", root)
}

func TestLastRootEmptyHistoryIsAbsence(t *testing.T) {
	client := newFakeClient()
	roots := NewRootHistoryResolver(newTestLookup(newFakeVolatile(), nil), client)

	root, found, err := roots.LastRoot(context.Background(), "store1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, root)
}

func TestLastRootUpstreamFailureIsAbsence(t *testing.T) {
	client := newFakeClient()
	client.historyErr = types.ErrDataLayerUnavailable
	roots := NewRootHistoryResolver(newTestLookup(newFakeVolatile(), nil), client)

	_, found, err := roots.LastRoot(context.Background(), "store1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLastRootCachedWithinWindow(t *testing.T) {
	client := newFakeClient()
	client.history["store1"] = []types.RootEntry{{RootHash: "0xabc"}}
	roots := NewRootHistoryResolver(newTestLookup(newFakeVolatile(), nil), client)

	_, _, err := roots.LastRoot(context.Background(), "store1")
	require.NoError(t, err)
	_, _, err = roots.LastRoot(context.Background(), "store1")
	require.NoError(t, err)

	assert.Equal(t, 1, client.callCount("root_history"))
}
