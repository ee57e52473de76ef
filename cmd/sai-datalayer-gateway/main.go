package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/cache"
	"github.com/saiset-co/sai-datalayer-gateway/config"
	"github.com/saiset-co/sai-datalayer-gateway/datalayer"
	"github.com/saiset-co/sai-datalayer-gateway/gateway"
	"github.com/saiset-co/sai-datalayer-gateway/health"
	"github.com/saiset-co/sai-datalayer-gateway/logger"
	"github.com/saiset-co/sai-datalayer-gateway/metrics"
	"github.com/saiset-co/sai-datalayer-gateway/notifier"
	"github.com/saiset-co/sai-datalayer-gateway/registry"
	"github.com/saiset-co/sai-datalayer-gateway/server"
	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
	"github.com/saiset-co/sai-datalayer-gateway/warmup"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the service configuration")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "sai-datalayer-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cm, err := config.NewConfigurationManager(configPath)
	if err != nil {
		return err
	}
	cfg := cm.GetConfig()

	log, err := logger.NewDefaultLogger(cfg.Logger)
	if err != nil {
		return err
	}

	promMetrics, err := metrics.NewPrometheusMetrics(log)
	if err != nil {
		return err
	}

	volatile, err := cache.NewVolatileTier(ctx, log, promMetrics, cfg.Cache.Volatile)
	if err != nil {
		return err
	}

	var durable types.DurableTier
	durable, err = cache.NewDurableTier(ctx, log, promMetrics, cfg.Cache.Durable)
	if err != nil {
		if !types.IsError(err, types.ErrCacheIsDisabled) {
			return err
		}
		durable = nil
		log.Warn("Durable tier disabled, running volatile-only")
	}

	client := datalayer.NewClient(ctx, log, cfg.DataLayer)
	defer client.Close()

	storeRegistry := registry.NewConfigRegistry(cfg.Stores)

	var sink types.NotifierSink
	var notifierManager *notifier.Manager
	if cfg.Notifier != nil && cfg.Notifier.Enabled {
		notifierManager, err = notifier.NewManager(ctx, log, promMetrics, cfg.Notifier)
		if err != nil {
			return err
		}
		sink = notifierManager
	}

	originTimeout := utils.ParseDurationOrDefault(cfg.Gateway.OriginTimeout, 30*time.Second)
	lookup := gateway.NewLookup(volatile, durable, log, promMetrics, originTimeout)

	catalog := gateway.NewStoreCatalog(lookup, client, storeRegistry, log)
	roots := gateway.NewRootHistoryResolver(lookup, client)
	kv := gateway.NewKeyValueProofGateway(lookup, client, sink, log)

	gateways := &server.Gateways{
		WellKnown: gateway.NewWellKnownResolver(lookup, client, cfg.DataLayer.DefaultAddress, health.VersionString(cfg.Name)),
		Catalog:   catalog,
		Roots:     roots,
		KV:        kv,
		Multipart: gateway.NewMultipartReconstructor(kv, log),
		Html:      gateway.NewHtmlRenderer(kv, log),
	}

	httpServer, err := server.NewFastHTTPServer(log, promMetrics, cfg.Server, cfg.Metrics, cfg.Gateway, gateways)
	if err != nil {
		return err
	}

	var warmer *warmup.Warmer
	if cfg.Warmup != nil && cfg.Warmup.Enabled {
		warmer, err = warmup.NewWarmer(ctx, log, catalog, roots, cfg.Warmup)
		if err != nil {
			return err
		}
	}

	components := []types.LifecycleManager{promMetrics, volatile}
	if durable != nil {
		components = append(components, durable)
	}
	if notifierManager != nil {
		components = append(components, notifierManager)
	}
	if warmer != nil {
		components = append(components, warmer)
	}
	components = append(components, httpServer)

	for _, component := range components {
		if err := component.Start(); err != nil {
			return err
		}
	}

	log.Info("Gateway running",
		zap.String("name", cfg.Name),
		zap.String("data_layer", cfg.DataLayer.BaseURL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-httpServer.ServeError():
		log.Error("HTTP server failed", zap.Error(err))
	}

	cancel()

	for i := len(components) - 1; i >= 0; i-- {
		if err := components[i].Stop(); err != nil {
			log.Warn("Component stop failed", zap.Error(err))
		}
	}

	return nil
}
