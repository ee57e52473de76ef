package gateway

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

func TestParseManifestNumericOrdering(t *testing.T) {
	parts, err := parseManifest([]string{"big.bin.part10", "big.bin.part2", "big.bin.part1"})
	require.NoError(t, err)

	ordered := make([]string, len(parts))
	for i, part := range parts {
		ordered[i] = part.filename
	}
	// Numeric, not lexicographic: part10 sorts after part2.
	assert.Equal(t, []string{"big.bin.part1", "big.bin.part2", "big.bin.part10"}, ordered)
}

func TestParseManifestMalformed(t *testing.T) {
	cases := []string{"no-marker", "file.partX", "file.part", "file.part-1"}
	for _, filename := range cases {
		_, err := parseManifest([]string{filename})
		assert.ErrorIs(t, err, types.ErrMalformedManifest, "filename %q", filename)
	}
}

func newMultipartFixture(values map[string]string) (*MultipartReconstructor, *fakeClient) {
	client := newFakeClient()
	for filename, segment := range values {
		client.values["store1|"+hex.EncodeToString([]byte(filename))] = segment
	}
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, nil, testLogger())
	return NewMultipartReconstructor(kv, testLogger()), client
}

func TestReassembleConcatenatesInPartOrder(t *testing.T) {
	m, _ := newMultipartFixture(map[string]string{
		"f.part1": hex.EncodeToString([]byte("ab")),
		"f.part2": hex.EncodeToString([]byte("cd")),
	})

	raw, err := m.Reassemble(context.Background(), "store1", []string{"f.part2", "f.part1"}, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), raw)
}

func TestReassembleMissingPartContributesEmptySegment(t *testing.T) {
	m, _ := newMultipartFixture(map[string]string{
		"f.part1": hex.EncodeToString([]byte("ab")),
		// f.part2 deliberately absent upstream.
		"f.part3": hex.EncodeToString([]byte("ef")),
	})

	raw, err := m.Reassemble(context.Background(), "store1", []string{"f.part1", "f.part2", "f.part3"}, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("abef"), raw)
}

func TestReassembleRejectsNonHexPayload(t *testing.T) {
	m, _ := newMultipartFixture(map[string]string{
		"f.part1": "not-hex-at-all",
	})

	_, err := m.Reassemble(context.Background(), "store1", []string{"f.part1"}, "")
	assert.ErrorIs(t, err, types.ErrValueNotHex)
}

func TestReassembleMalformedManifestFailsFast(t *testing.T) {
	m, client := newMultipartFixture(nil)

	_, err := m.Reassemble(context.Background(), "store1", []string{"f.part1", "garbage"}, "")
	assert.ErrorIs(t, err, types.ErrMalformedManifest)
	assert.Equal(t, 0, client.callCount("value"))
}
