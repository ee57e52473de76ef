package server

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/valyala/fasthttp"
)

const compressionThreshold = 1024

// withCompression compresses response bodies above the threshold,
// preferring brotli, then gzip, then deflate.
func withCompression(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		next(ctx)

		body := ctx.Response.Body()
		if len(body) < compressionThreshold {
			return
		}
		if len(ctx.Response.Header.ContentEncoding()) > 0 {
			return
		}

		accepted := string(ctx.Request.Header.Peek(fasthttp.HeaderAcceptEncoding))

		switch {
		case strings.Contains(accepted, "br"):
			if compressed, ok := compressBrotli(body); ok {
				ctx.Response.SetBody(compressed)
				ctx.Response.Header.SetContentEncoding("br")
			}
		case strings.Contains(accepted, "gzip"):
			if compressed, ok := compressGzip(body); ok {
				ctx.Response.SetBody(compressed)
				ctx.Response.Header.SetContentEncoding("gzip")
			}
		case strings.Contains(accepted, "deflate"):
			if compressed, ok := compressDeflate(body); ok {
				ctx.Response.SetBody(compressed)
				ctx.Response.Header.SetContentEncoding("deflate")
			}
		}
	}
}

func compressBrotli(body []byte) ([]byte, bool) {
	var buf bytes.Buffer
	writer := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := writer.Write(body); err != nil {
		return nil, false
	}
	if err := writer.Close(); err != nil {
		return nil, false
	}
	return resultIfSmaller(buf.Bytes(), body)
}

func compressGzip(body []byte) ([]byte, bool) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(body); err != nil {
		return nil, false
	}
	if err := writer.Close(); err != nil {
		return nil, false
	}
	return resultIfSmaller(buf.Bytes(), body)
}

func compressDeflate(body []byte) ([]byte, bool) {
	var buf bytes.Buffer
	writer, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, false
	}
	if _, err := writer.Write(body); err != nil {
		return nil, false
	}
	if err := writer.Close(); err != nil {
		return nil, false
	}
	return resultIfSmaller(buf.Bytes(), body)
}

func resultIfSmaller(compressed, original []byte) ([]byte, bool) {
	if len(compressed) >= len(original) {
		return nil, false
	}
	return compressed, true
}
