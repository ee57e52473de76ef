package gateway

import (
	"context"
	"encoding/hex"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

const (
	indexEntryKey = "index.html"
	headTag       = "<head>"
)

// HtmlRenderer serves a store's index.html entry with a base href
// injected so relative links resolve under the store's path prefix.
type HtmlRenderer struct {
	kv     *KeyValueProofGateway
	logger types.Logger
}

func NewHtmlRenderer(kv *KeyValueProofGateway, logger types.Logger) *HtmlRenderer {
	return &HtmlRenderer{kv: kv, logger: logger}
}

func (h *HtmlRenderer) RenderEntry(ctx context.Context, storeID, rootHash string) (string, bool, error) {
	hexKey := hex.EncodeToString([]byte(indexEntryKey))

	value, found, err := h.kv.Value(ctx, storeID, hexKey, rootHash)
	if err != nil || !found {
		return "", false, err
	}

	raw, err := hex.DecodeString(value)
	if err != nil {
		h.logger.Error("Index entry is not valid hex",
			zap.String("store_id", storeID), zap.Error(err))
		return "", false, nil
	}

	return injectBaseTag(string(raw), storeID), true, nil
}

// injectBaseTag inserts <base href="/{storeId}/"> right after the
// first <head> occurrence. Markup without a head tag passes through
// untouched.
func injectBaseTag(markup, storeID string) string {
	idx := strings.Index(markup, headTag)
	if idx < 0 {
		return markup
	}

	insertAt := idx + len(headTag)
	baseTag := "\n    <base href=\"/" + html.EscapeString(storeID) + "/\">"

	return markup[:insertAt] + baseTag + markup[insertAt:]
}
