package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

func TestKeysRoundTripAndSignal(t *testing.T) {
	client := newFakeClient()
	client.keys["store1"] = []string{"aa", "bb"}
	sink := &fakeSink{}
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, sink, testLogger())

	keys, found, err := kv.Keys(context.Background(), "store1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"aa", "bb"}, keys)
	assert.Equal(t, []string{"store1"}, sink.registrations())
}

func TestKeysSignalsOnFailure(t *testing.T) {
	client := newFakeClient()
	sink := &fakeSink{}
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, sink, testLogger())

	// No keys configured: the origin fails, the caller sees absence,
	// the notifier still fires.
	keys, found, err := kv.Keys(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, keys)
	assert.Equal(t, []string{"missing"}, sink.registrations())
}

func TestValueCacheKeyIgnoresRootHash(t *testing.T) {
	client := newFakeClient()
	client.values["store1|aa"] = "cafe"
	sink := &fakeSink{}
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, sink, testLogger())

	first, found, err := kv.Value(context.Background(), "store1", "aa", "root-1")
	require.NoError(t, err)
	require.True(t, found)

	second, found, err := kv.Value(context.Background(), "store1", "aa", "root-2")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.callCount("value"))
	assert.Equal(t, []string{"store1", "store1"}, sink.registrations())
}

func TestProofSignalsOncePerCall(t *testing.T) {
	client := newFakeClient()
	client.proofs["store1|aa"] = `{"proof":"x"}`
	sink := &fakeSink{}
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, sink, testLogger())

	proof, found, err := kv.Proof(context.Background(), "store1", "aa")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"proof":"x"}`, proof)
	assert.Len(t, sink.registrations(), 1)

	// Cache hit path signals too.
	_, found, err = kv.Proof(context.Background(), "store1", "aa")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, sink.registrations(), 2)
	assert.Equal(t, 1, client.callCount("proof"))
}

func TestProofOriginFailureIsAbsenceWithOneSignal(t *testing.T) {
	client := newFakeClient()
	client.proofErr = types.ErrDataLayerUnavailable
	sink := &fakeSink{}
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, sink, testLogger())

	proof, found, err := kv.Proof(context.Background(), "store1", "aa")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, proof)
	assert.Equal(t, []string{"store1"}, sink.registrations())
}

func TestPanickingSinkDoesNotBreakReads(t *testing.T) {
	client := newFakeClient()
	client.values["store1|aa"] = "cafe"
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, &fakeSink{panicky: true}, testLogger())

	value, found, err := kv.Value(context.Background(), "store1", "aa", "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cafe", value)
}

func TestNilSinkIsTolerated(t *testing.T) {
	client := newFakeClient()
	client.values["store1|aa"] = "cafe"
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, nil, testLogger())

	_, found, err := kv.Value(context.Background(), "store1", "aa", "")
	require.NoError(t, err)
	assert.True(t, found)
}
