package gateway

import (
	"context"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

const partMarker = ".part"

// MultipartReconstructor reassembles values that were split across
// multiple upstream entries named <base>.part<N>.
type MultipartReconstructor struct {
	kv     *KeyValueProofGateway
	logger types.Logger
}

func NewMultipartReconstructor(kv *KeyValueProofGateway, logger types.Logger) *MultipartReconstructor {
	return &MultipartReconstructor{kv: kv, logger: logger}
}

type manifestPart struct {
	filename string
	ordinal  int
}

// Reassemble fetches every part concurrently and recombines them in
// ascending part-number order, never completion order. A part that
// fails to resolve contributes an empty segment; a filename without a
// parseable part number is a hard error.
func (m *MultipartReconstructor) Reassemble(ctx context.Context, storeID string, manifest []string, rootHash string) ([]byte, error) {
	parts, err := parseManifest(manifest)
	if err != nil {
		return nil, err
	}

	segments := make([]string, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		g.Go(func() error {
			hexKey := hex.EncodeToString([]byte(part.filename))
			value, found, err := m.kv.Value(gctx, storeID, hexKey, rootHash)
			if err != nil {
				return err
			}
			if !found {
				m.logger.Warn("Multipart segment missing, using empty segment",
					zap.String("store_id", storeID),
					zap.String("filename", part.filename))
				return nil
			}
			segments[i] = value
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := strings.Join(segments, "")
	raw, err := hex.DecodeString(combined)
	if err != nil {
		return nil, types.Errorf(types.ErrValueNotHex, "multipart for store %s: %v", storeID, err)
	}

	return raw, nil
}

func parseManifest(manifest []string) ([]manifestPart, error) {
	parts := make([]manifestPart, 0, len(manifest))

	for _, filename := range manifest {
		idx := strings.LastIndex(filename, partMarker)
		if idx < 0 {
			return nil, types.Errorf(types.ErrMalformedManifest, "no %q marker in %q", partMarker, filename)
		}

		ordinal, err := strconv.Atoi(filename[idx+len(partMarker):])
		if err != nil || ordinal < 0 {
			return nil, types.Errorf(types.ErrMalformedManifest, "bad part number in %q", filename)
		}

		parts = append(parts, manifestPart{filename: filename, ordinal: ordinal})
	}

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].ordinal < parts[j].ordinal
	})

	return parts, nil
}
