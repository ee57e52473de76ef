package gateway

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectBaseTag(t *testing.T) {
	markup := "<html><head><title>t</title></head></html>"
	expected := "<html><head>\n    <base href=\"/abc/\"><title>t</title></head></html>"
	assert.Equal(t, expected, injectBaseTag(markup, "abc"))
}

func TestInjectBaseTagOnlyFirstHead(t *testing.T) {
	markup := "<head></head><head></head>"
	result := injectBaseTag(markup, "s")
	assert.Equal(t, "<head>\n    <base href=\"/s/\"></head><head></head>", result)
}

func TestInjectBaseTagWithoutHeadPassesThrough(t *testing.T) {
	markup := "<html><body>plain</body></html>"
	assert.Equal(t, markup, injectBaseTag(markup, "abc"))
}

func TestInjectBaseTagEscapesStoreID(t *testing.T) {
	result := injectBaseTag("<head></head>", `x"><script>`)
	assert.NotContains(t, result, "<script>")
	assert.Contains(t, result, "&#34;")
}

func TestRenderEntryInjectsBase(t *testing.T) {
	client := newFakeClient()
	hexKey := hex.EncodeToString([]byte("index.html"))
	client.values["store1|"+hexKey] = hex.EncodeToString([]byte("<html><head></head><body>hi</body></html>"))

	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, nil, testLogger())
	renderer := NewHtmlRenderer(kv, testLogger())

	markup, found, err := renderer.RenderEntry(context.Background(), "store1", "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "<html><head>\n    <base href=\"/store1/\"></head><body>hi</body></html>", markup)
}

func TestRenderEntryMissingIndex(t *testing.T) {
	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), newFakeClient(), nil, testLogger())
	renderer := NewHtmlRenderer(kv, testLogger())

	_, found, err := renderer.RenderEntry(context.Background(), "store1", "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRenderEntryNonHexValueIsAbsence(t *testing.T) {
	client := newFakeClient()
	hexKey := hex.EncodeToString([]byte("index.html"))
	client.values["store1|"+hexKey] = "zz-not-hex"

	kv := NewKeyValueProofGateway(newTestLookup(newFakeVolatile(), nil), client, nil, testLogger())
	renderer := NewHtmlRenderer(kv, testLogger())

	_, found, err := renderer.RenderEntry(context.Background(), "store1", "")
	require.NoError(t, err)
	assert.False(t, found)
}
