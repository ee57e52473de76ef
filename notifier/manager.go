// Package notifier fans out "store was read" signals to external
// subscribers. Registration is fire-and-forget: it never blocks and
// never fails into the caller's read path.
package notifier

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

type ManagerState int32

const (
	ManagerStateStopped ManagerState = iota
	ManagerStateStarting
	ManagerStateRunning
	ManagerStateStopping
)

const defaultQueueSize = 1024

// Delivery is one fan-out target (webhook, websocket broker, ...).
type Delivery interface {
	Deliver(ctx context.Context, storeID string) error
	Name() string
	Close() error
}

type Manager struct {
	ctx        context.Context
	cancel     context.CancelFunc
	logger     types.Logger
	metrics    types.MetricsManager
	deliveries []Delivery
	queue      chan string
	dropped    uint64
	state      atomic.Value
	workerDone chan struct{}
}

func NewManager(ctx context.Context, logger types.Logger, metrics types.MetricsManager, config *types.NotifierConfig) (*Manager, error) {
	queueSize := defaultQueueSize
	if config != nil && config.QueueSize > 0 {
		queueSize = config.QueueSize
	}

	managerCtx, cancel := context.WithCancel(ctx)

	m := &Manager{
		ctx:        managerCtx,
		cancel:     cancel,
		logger:     logger,
		metrics:    metrics,
		queue:      make(chan string, queueSize),
		workerDone: make(chan struct{}),
	}
	m.state.Store(ManagerStateStopped)

	if config != nil && config.Webhook != nil && config.Webhook.Enabled {
		m.deliveries = append(m.deliveries, NewWebhookDelivery(logger, config.Webhook))
	}

	if config != nil && config.WebSocket != nil && config.WebSocket.Enabled {
		broker, err := NewWebSocketBroker(managerCtx, logger, config.WebSocket)
		if err != nil {
			cancel()
			return nil, types.WrapError(err, "failed to create websocket broker")
		}
		m.deliveries = append(m.deliveries, broker)
	}

	return m, nil
}

// Register enqueues a store for background notification. It never
// blocks: when the queue is full the signal is dropped and counted.
func (m *Manager) Register(storeID string) {
	if storeID == "" || m.state.Load().(ManagerState) != ManagerStateRunning {
		return
	}

	select {
	case m.queue <- storeID:
	default:
		atomic.AddUint64(&m.dropped, 1)
		if m.metrics != nil {
			m.metrics.Counter("notifier_dropped_total", nil).Inc()
		}
		m.logger.Warn("Notifier queue full, dropping registration",
			zap.String("store_id", storeID))
	}
}

func (m *Manager) Start() error {
	if !m.state.CompareAndSwap(ManagerStateStopped, ManagerStateStarting) {
		return types.ErrServerAlreadyRunning
	}

	go m.worker()

	m.state.CompareAndSwap(ManagerStateStarting, ManagerStateRunning)
	m.logger.Info("Notifier started", zap.Int("deliveries", len(m.deliveries)))
	return nil
}

func (m *Manager) Stop() error {
	if !m.state.CompareAndSwap(ManagerStateRunning, ManagerStateStopping) {
		return types.ErrServerNotRunning
	}

	defer m.state.Store(ManagerStateStopped)

	m.cancel()

	select {
	case <-m.workerDone:
	case <-time.After(5 * time.Second):
		m.logger.Warn("Notifier worker stop timeout")
	}

	for _, delivery := range m.deliveries {
		if err := delivery.Close(); err != nil {
			m.logger.Error("Failed to close notifier delivery",
				zap.String("delivery", delivery.Name()), zap.Error(err))
		}
	}

	m.logger.Info("Notifier stopped",
		zap.Uint64("dropped", atomic.LoadUint64(&m.dropped)))
	return nil
}

func (m *Manager) IsRunning() bool {
	return m.state.Load().(ManagerState) == ManagerStateRunning
}

func (m *Manager) worker() {
	defer close(m.workerDone)

	for {
		select {
		case <-m.ctx.Done():
			return
		case storeID := <-m.queue:
			m.deliver(storeID)
		}
	}
}

func (m *Manager) deliver(storeID string) {
	for _, delivery := range m.deliveries {
		deliverCtx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
		err := delivery.Deliver(deliverCtx, storeID)
		cancel()

		result := "success"
		if err != nil {
			result = "error"
			m.logger.Debug("Notifier delivery failed",
				zap.String("delivery", delivery.Name()),
				zap.String("store_id", storeID),
				zap.Error(err))
		}

		if m.metrics != nil {
			m.metrics.Counter("notifier_deliveries_total", map[string]string{
				"delivery": delivery.Name(),
				"result":   result,
			}).Inc()
		}
	}
}
