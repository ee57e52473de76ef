package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

// WebSocketBroker keeps a persistent connection to an external refresh
// coordinator and pushes registrations over it, redialing lazily on the
// next delivery when the link drops.
type WebSocketBroker struct {
	ctx          context.Context
	logger       types.Logger
	url          string
	pingInterval time.Duration
	writeWait    time.Duration
	conn         *websocket.Conn
	writeMu      sync.Mutex
	closed       bool
}

type wsMessage struct {
	Type    string `json:"type"`
	StoreID string `json:"store_id"`
	SentAt  int64  `json:"sent_at"`
}

func NewWebSocketBroker(ctx context.Context, logger types.Logger, config *types.WebSocketConfig) (*WebSocketBroker, error) {
	broker := &WebSocketBroker{
		ctx:          ctx,
		logger:       logger,
		url:          config.URL,
		pingInterval: utils.ParseDurationOrDefault(config.PingInterval, 30*time.Second),
		writeWait:    utils.ParseDurationOrDefault(config.WriteWait, 10*time.Second),
	}

	if err := broker.connect(); err != nil {
		// Deferred connect: deliveries retry on the next Deliver call.
		logger.Warn("WebSocket broker initial connect failed",
			zap.String("url", config.URL), zap.Error(err))
	}

	go broker.pingLoop()

	return broker, nil
}

func (b *WebSocketBroker) Name() string { return "websocket" }

func (b *WebSocketBroker) Deliver(ctx context.Context, storeID string) error {
	body, err := utils.Marshal(wsMessage{
		Type:    "store_registered",
		StoreID: storeID,
		SentAt:  time.Now().Unix(),
	})
	if err != nil {
		return types.WrapError(err, "failed to marshal ws message")
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if b.closed {
		return types.ErrNotifierNotRunning
	}

	if b.conn == nil {
		if err := b.connectLocked(); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(b.writeWait)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = b.conn.SetWriteDeadline(deadline)

	if err := b.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		b.dropConnLocked()
		return types.WrapError(err, "ws write failed")
	}

	return nil
}

func (b *WebSocketBroker) Close() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.closed = true
	if b.conn != nil {
		err := b.conn.Close()
		b.conn = nil
		return err
	}
	return nil
}

func (b *WebSocketBroker) connect() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.connectLocked()
}

func (b *WebSocketBroker) connectLocked() error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(b.ctx, b.url, nil)
	if err != nil {
		return types.WrapError(err, "ws dial failed")
	}

	b.conn = conn
	b.logger.Info("WebSocket broker connected", zap.String("url", b.url))
	return nil
}

func (b *WebSocketBroker) dropConnLocked() {
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}

func (b *WebSocketBroker) pingLoop() {
	ticker := time.NewTicker(b.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.writeMu.Lock()
			if b.closed {
				b.writeMu.Unlock()
				return
			}
			if b.conn != nil {
				_ = b.conn.SetWriteDeadline(time.Now().Add(b.writeWait))
				if err := b.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					b.logger.Debug("WebSocket ping failed, dropping connection", zap.Error(err))
					b.dropConnLocked()
				}
			}
			b.writeMu.Unlock()
		}
	}
}
