package datalayer

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

type BreakerState int32

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// CircuitBreaker guards the upstream node from hammering while it is
// down. Closed passes everything, open rejects until the recovery
// timeout, half-open lets probes through until enough succeed.
type CircuitBreaker struct {
	config    *types.BreakerConfig
	recovery  time.Duration
	logger    types.Logger
	state     BreakerState
	failures  atomic.Int32
	successes atomic.Int32
	lastFail  atomic.Int64
	mutex     sync.Mutex
}

func NewCircuitBreaker(config *types.BreakerConfig, logger types.Logger) *CircuitBreaker {
	if config == nil {
		config = &types.BreakerConfig{Enabled: false}
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.HalfOpenRequests <= 0 {
		config.HalfOpenRequests = 2
	}

	return &CircuitBreaker{
		config:   config,
		recovery: utils.ParseDurationOrDefault(config.RecoveryTimeout, 30*time.Second),
		logger:   logger,
		state:    BreakerClosed,
	}
}

func (cb *CircuitBreaker) CanExecute() bool {
	if cb == nil || !cb.config.Enabled {
		return true
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case BreakerClosed, BreakerHalfOpen:
		return true
	case BreakerOpen:
		if time.Since(time.Unix(cb.lastFail.Load(), 0)) > cb.recovery {
			cb.state = BreakerHalfOpen
			cb.successes.Store(0)
			cb.logger.Info("Circuit breaker half-open, probing upstream")
			return true
		}
		return false
	default:
		return true
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	if cb == nil || !cb.config.Enabled {
		return
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case BreakerClosed:
		cb.failures.Store(0)
	case BreakerHalfOpen:
		if cb.successes.Add(1) >= int32(cb.config.HalfOpenRequests) {
			cb.state = BreakerClosed
			cb.failures.Store(0)
			cb.logger.Info("Circuit breaker closed, upstream recovered")
		}
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	if cb == nil || !cb.config.Enabled {
		return
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.lastFail.Store(time.Now().Unix())

	switch cb.state {
	case BreakerClosed:
		if cb.failures.Add(1) >= int32(cb.config.FailureThreshold) {
			cb.state = BreakerOpen
			cb.logger.Warn("Circuit breaker opened",
				zap.Int32("failures", cb.failures.Load()))
		}
	case BreakerHalfOpen:
		cb.state = BreakerOpen
		cb.logger.Warn("Circuit breaker re-opened from half-open")
	}
}

func (cb *CircuitBreaker) StateString() string {
	if cb == nil || !cb.config.Enabled {
		return "disabled"
	}

	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}
