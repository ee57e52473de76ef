package server

import (
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

const requestIDHeader = "X-Request-ID"

func withRecovery(logger types.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic in request handler",
					zap.Any("panic", r),
					zap.String("path", string(ctx.Path())),
					zap.String("stack", string(debug.Stack())))
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

func withAccessLog(logger types.Logger, metrics types.MetricsManager, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		requestID := string(ctx.Request.Header.Peek(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Response.Header.Set(requestIDHeader, requestID)

		next(ctx)

		status := ctx.Response.StatusCode()
		logger.Debug("Request handled",
			zap.String("request_id", requestID),
			zap.String("method", string(ctx.Method())),
			zap.String("path", string(ctx.Path())),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)))

		if metrics != nil {
			metrics.Counter("http_requests_total", map[string]string{
				"status": statusClass(status),
			}).Inc()
			metrics.Histogram("http_request_duration_seconds",
				nil, map[string]string{"method": string(ctx.Method())},
			).ObserveDuration(start)
		}
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
