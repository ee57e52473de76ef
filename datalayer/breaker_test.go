package datalayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/logger"
	"github.com/saiset-co/sai-datalayer-gateway/types"
)

func newTestBreaker(threshold int, recovery string) *CircuitBreaker {
	return NewCircuitBreaker(&types.BreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		RecoveryTimeout:  recovery,
		HalfOpenRequests: 2,
	}, logger.NewZapWrapper(zap.NewNop()))
}

func TestBreakerDisabledAlwaysExecutes(t *testing.T) {
	cb := NewCircuitBreaker(nil, logger.NewZapWrapper(zap.NewNop()))

	for i := 0; i < 10; i++ {
		cb.RecordFailure()
	}
	assert.True(t, cb.CanExecute())
	assert.Equal(t, "disabled", cb.StateString())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker(3, "1h")

	for i := 0; i < 3; i++ {
		require.True(t, cb.CanExecute())
		cb.RecordFailure()
	}

	assert.False(t, cb.CanExecute())
	assert.Equal(t, "open", cb.StateString())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(3, "1h")

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	assert.True(t, cb.CanExecute())
	assert.Equal(t, "closed", cb.StateString())
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := newTestBreaker(1, "1ms")

	cb.RecordFailure()
	require.Equal(t, "open", cb.StateString())

	time.Sleep(1100 * time.Millisecond)
	require.True(t, cb.CanExecute())
	assert.Equal(t, "half-open", cb.StateString())

	cb.RecordSuccess()
	cb.RecordSuccess()
	assert.Equal(t, "closed", cb.StateString())
}

func TestBreakerReopensFromHalfOpenOnFailure(t *testing.T) {
	cb := newTestBreaker(1, "1ms")

	cb.RecordFailure()
	time.Sleep(1100 * time.Millisecond)
	require.True(t, cb.CanExecute())

	cb.RecordFailure()
	assert.Equal(t, "open", cb.StateString())
}
