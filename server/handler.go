package server

import (
	"encoding/hex"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/gateway"
	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

// statusClientClosedRequest mirrors nginx's non-standard 499 for
// requests aborted by the client.
const statusClientClosedRequest = 499

// Gateways bundles the read-path components the HTTP surface exposes.
type Gateways struct {
	WellKnown *gateway.WellKnownResolver
	Catalog   *gateway.StoreCatalog
	Roots     *gateway.RootHistoryResolver
	KV        *gateway.KeyValueProofGateway
	Multipart *gateway.MultipartReconstructor
	Html      *gateway.HtmlRenderer
}

type handler struct {
	logger      types.Logger
	metrics     types.MetricsManager
	gateways    *Gateways
	baseURI     string
	metricsPath string
}

func (h *handler) handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	switch path {
	case "/healthz":
		h.handleHealth(ctx)
		return
	case "/.well-known":
		h.handleWellKnown(ctx)
		return
	case "/.well-known/known_stores", "/known_stores":
		h.handleKnownStores(ctx, false)
		return
	case "/known_stores/names":
		h.handleKnownStores(ctx, true)
		return
	}

	if h.metricsPath != "" && path == h.metricsPath {
		h.handleMetrics(ctx)
		return
	}

	segments := splitPath(path)
	if len(segments) == 0 {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}

	storeID := segments[0]
	rootHash := string(ctx.QueryArgs().Peek("root"))

	switch {
	case len(segments) == 1:
		h.handleRenderEntry(ctx, storeID, rootHash)
	case len(segments) == 2 && segments[1] == "last_root":
		h.handleLastRoot(ctx, storeID)
	case len(segments) == 2 && segments[1] == "keys":
		h.handleKeys(ctx, storeID)
	case len(segments) == 3 && segments[1] == "value":
		h.handleValue(ctx, storeID, segments[2], rootHash)
	case len(segments) == 3 && segments[1] == "proof":
		h.handleProof(ctx, storeID, segments[2])
	case len(segments) == 3 && segments[1] == "multipart":
		h.handleMultipart(ctx, storeID, segments[2], rootHash)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (h *handler) handleHealth(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"status":"ok"}`)
}

func (h *handler) handleMetrics(ctx *fasthttp.RequestCtx) {
	body, err := h.metrics.Export()
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("text/plain; version=0.0.4")
	ctx.SetBody(body)
}

func (h *handler) handleWellKnown(ctx *fasthttp.RequestCtx) {
	info, err := h.gateways.WellKnown.Describe(ctx, h.resolveBaseURI(ctx))
	if err != nil {
		ctx.SetStatusCode(statusClientClosedRequest)
		return
	}
	h.writeJSON(ctx, info)
}

func (h *handler) handleKnownStores(ctx *fasthttp.RequestCtx, withNames bool) {
	if withNames {
		stores, found, err := h.gateways.Catalog.ListStoresWithNames(ctx)
		h.writeListResult(ctx, stores, found, err)
		return
	}

	ids, found, err := h.gateways.Catalog.ListStores(ctx)
	h.writeListResult(ctx, ids, found, err)
}

func (h *handler) handleLastRoot(ctx *fasthttp.RequestCtx, storeID string) {
	root, found, err := h.gateways.Roots.LastRoot(ctx, storeID)
	if h.finish(ctx, found, err) {
		h.writeJSON(ctx, map[string]string{"root_hash": root})
	}
}

func (h *handler) handleKeys(ctx *fasthttp.RequestCtx, storeID string) {
	keys, found, err := h.gateways.KV.Keys(ctx, storeID)
	if h.finish(ctx, found, err) {
		h.writeJSON(ctx, map[string][]string{"keys": keys})
	}
}

func (h *handler) handleValue(ctx *fasthttp.RequestCtx, storeID, hexKey, rootHash string) {
	value, found, err := h.gateways.KV.Value(ctx, storeID, hexKey, rootHash)
	if h.finish(ctx, found, err) {
		h.writeJSON(ctx, map[string]string{"value": value})
	}
}

func (h *handler) handleProof(ctx *fasthttp.RequestCtx, storeID, hexKey string) {
	proof, found, err := h.gateways.KV.Proof(ctx, storeID, hexKey)
	if h.finish(ctx, found, err) {
		ctx.SetContentType("application/json")
		ctx.SetBodyString(proof)
	}
}

// handleMultipart reconstructs <base> from the store's <base>.part<N>
// entries, deriving the manifest from the key listing.
func (h *handler) handleMultipart(ctx *fasthttp.RequestCtx, storeID, base, rootHash string) {
	keys, found, err := h.gateways.KV.Keys(ctx, storeID)
	if !h.finish(ctx, found, err) {
		return
	}

	manifest := make([]string, 0, 4)
	prefix := base + ".part"
	for _, key := range keys {
		decoded, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
		if err != nil {
			continue
		}
		if name := string(decoded); strings.HasPrefix(name, prefix) {
			manifest = append(manifest, name)
		}
	}

	if len(manifest) == 0 {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}

	raw, err := h.gateways.Multipart.Reassemble(ctx, storeID, manifest, rootHash)
	if err != nil {
		if ctx.Err() != nil {
			ctx.SetStatusCode(statusClientClosedRequest)
			return
		}
		h.logger.Error("Multipart reassembly failed",
			zap.String("store_id", storeID),
			zap.String("base", base),
			zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		return
	}

	ctx.SetContentType("application/octet-stream")
	ctx.SetBody(raw)
}

func (h *handler) handleRenderEntry(ctx *fasthttp.RequestCtx, storeID, rootHash string) {
	markup, found, err := h.gateways.Html.RenderEntry(ctx, storeID, rootHash)
	if h.finish(ctx, found, err) {
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBodyString(markup)
	}
}

// finish maps the (found, err) pair to a response status. It returns
// true when the caller should write the success body.
func (h *handler) finish(ctx *fasthttp.RequestCtx, found bool, err error) bool {
	if err != nil {
		ctx.SetStatusCode(statusClientClosedRequest)
		return false
	}
	if !found {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return false
	}
	return true
}

func (h *handler) writeListResult(ctx *fasthttp.RequestCtx, payload interface{}, found bool, err error) {
	if h.finish(ctx, found, err) {
		h.writeJSON(ctx, payload)
	}
}

func (h *handler) writeJSON(ctx *fasthttp.RequestCtx, payload interface{}) {
	body, err := utils.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal response", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func (h *handler) resolveBaseURI(ctx *fasthttp.RequestCtx) string {
	if h.baseURI != "" {
		return h.baseURI
	}
	scheme := "http"
	if ctx.IsTLS() {
		scheme = "https"
	}
	return scheme + "://" + string(ctx.Host())
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
