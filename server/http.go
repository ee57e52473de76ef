package server

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

type FastHTTPServer struct {
	logger   types.Logger
	config   *types.ServerConfig
	server   *fasthttp.Server
	listener net.Listener
	state    atomic.Value
	serveErr chan error
}

func NewFastHTTPServer(logger types.Logger, metrics types.MetricsManager, config *types.ServerConfig, metricsConfig *types.MetricsConfig, gatewayConfig *types.GatewayConfig, gateways *Gateways) (*FastHTTPServer, error) {
	metricsPath := ""
	if metricsConfig != nil && metricsConfig.Enabled {
		metricsPath = metricsConfig.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}

	baseURI := ""
	if gatewayConfig != nil {
		baseURI = gatewayConfig.BaseURI
	}

	h := &handler{
		logger:      logger,
		metrics:     metrics,
		gateways:    gateways,
		baseURI:     baseURI,
		metricsPath: metricsPath,
	}

	inner := h.handle
	if config.Compression {
		inner = withCompression(h.handle)
	}
	requestHandler := withRecovery(logger, withAccessLog(logger, metrics, inner))

	s := &FastHTTPServer{
		logger: logger,
		config: config,
		server: &fasthttp.Server{
			Handler:      requestHandler,
			ReadTimeout:  secondsOrDefault(config.ReadTimeout, 30),
			WriteTimeout: secondsOrDefault(config.WriteTimeout, 30),
			Name:         "sai-datalayer-gateway",
		},
		serveErr: make(chan error, 1),
	}
	s.state.Store(StateStopped)

	return s, nil
}

func (s *FastHTTPServer) Start() error {
	if !s.state.CompareAndSwap(StateStopped, StateStarting) {
		return types.ErrServerAlreadyRunning
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.state.Store(StateStopped)
		return types.Errorf(types.ErrServerStartFailed, "listen %s: %v", addr, err)
	}

	tlsConfig, err := buildTLSConfig(s.config.TLS)
	if err != nil {
		_ = listener.Close()
		s.state.Store(StateStopped)
		return err
	}
	if tlsConfig != nil {
		listener = tls.NewListener(listener, tlsConfig)
	}

	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil {
			s.serveErr <- err
		}
	}()

	s.state.CompareAndSwap(StateStarting, StateRunning)
	s.logger.Info("HTTP server started",
		zap.String("addr", addr),
		zap.Bool("tls", tlsConfig != nil))

	return nil
}

func (s *FastHTTPServer) Stop() error {
	if !s.state.CompareAndSwap(StateRunning, StateStopping) {
		return types.ErrServerNotRunning
	}

	defer s.state.Store(StateStopped)

	shutdownTimeout := secondsOrDefault(s.config.ShutdownTimeout, 10)

	done := make(chan error, 1)
	go func() {
		done <- s.server.Shutdown()
	}()

	select {
	case err := <-done:
		if err != nil {
			return types.WrapError(err, "server shutdown failed")
		}
	case <-time.After(shutdownTimeout):
		s.logger.Warn("HTTP server shutdown timeout")
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *FastHTTPServer) IsRunning() bool {
	return s.state.Load().(State) == StateRunning
}

// ServeError exposes the async serve failure channel for the main
// loop's select.
func (s *FastHTTPServer) ServeError() <-chan error {
	return s.serveErr
}

func secondsOrDefault(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}
