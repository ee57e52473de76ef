package types

import (
	"errors"
	"fmt"
)

var (
	ErrConfigNotFound       = errors.New("config not found")
	ErrConfigParseFailed    = errors.New("config parse failed")
	ErrConfigIsNil          = errors.New("config is nil")
	ErrConfigValidateFailed = errors.New("config validate failed")
)

var (
	ErrServerNotRunning     = errors.New("server not running")
	ErrServerAlreadyRunning = errors.New("server already running")
	ErrServerStartFailed    = errors.New("server start failed")
	ErrRouteNotFound        = errors.New("route not found")
)

var (
	ErrCacheKeyEmpty         = errors.New("cache key empty")
	ErrCacheConnectionFailed = errors.New("cache connection failed")
	ErrCacheTypeUnknown      = errors.New("cache type unknown")
	ErrCacheIsDisabled       = errors.New("cache tier is disabled")
)

var (
	ErrDataLayerUnavailable = errors.New("data layer unavailable")
	ErrDataLayerBadResponse = errors.New("data layer bad response")
	ErrCircuitBreakerOpen   = errors.New("circuit breaker open")
	ErrEmptyRootHistory     = errors.New("empty root history")
)

var (
	ErrMalformedManifest = errors.New("malformed multipart manifest")
	ErrValueNotHex       = errors.New("value is not valid hex")
)

var (
	ErrNotifierNotRunning = errors.New("notifier not running")
	ErrNotifierQueueFull  = errors.New("notifier queue full")
)

var (
	ErrMetricsIsDisabled = errors.New("metrics manager is disabled")
	ErrLogFileIsEmpty    = errors.New("log file is empty")
	ErrLoggerTypeUnknown = errors.New("logger type unknown")
)

func Errorf(baseErr error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", baseErr, fmt.Sprintf(format, args...))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func NewErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func IsError(err, target error) bool {
	return errors.Is(err, target)
}
