// Package warmup re-primes the hottest cache entries on a schedule so
// interactive reads rarely pay the origin round trip.
package warmup

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/gateway"
	"github.com/saiset-co/sai-datalayer-gateway/types"
)

type Warmer struct {
	ctx     context.Context
	logger  types.Logger
	catalog *gateway.StoreCatalog
	roots   *gateway.RootHistoryResolver
	cron    *cron.Cron
	entryID cron.EntryID
	started int32
}

func NewWarmer(ctx context.Context, logger types.Logger, catalog *gateway.StoreCatalog, roots *gateway.RootHistoryResolver, config *types.WarmupConfig) (*Warmer, error) {
	w := &Warmer{
		ctx:     ctx,
		logger:  logger,
		catalog: catalog,
		roots:   roots,
		cron:    cron.New(),
	}

	schedule := "@every 10m"
	if config != nil && config.Schedule != "" {
		schedule = config.Schedule
	}

	entryID, err := w.cron.AddFunc(schedule, w.run)
	if err != nil {
		return nil, types.WrapError(err, "invalid warmup schedule")
	}
	w.entryID = entryID

	return w, nil
}

func (w *Warmer) Start() error {
	if !atomic.CompareAndSwapInt32(&w.started, 0, 1) {
		return types.ErrServerAlreadyRunning
	}
	w.cron.Start()
	w.logger.Info("Cache warmer started")
	return nil
}

func (w *Warmer) Stop() error {
	if !atomic.CompareAndSwapInt32(&w.started, 1, 0) {
		return types.ErrServerNotRunning
	}

	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		w.logger.Warn("Cache warmer stop timeout")
	}

	w.logger.Info("Cache warmer stopped")
	return nil
}

func (w *Warmer) IsRunning() bool {
	return atomic.LoadInt32(&w.started) == 1
}

// run refreshes the catalog and every store's last root. Best effort:
// failures are logged and the next tick tries again.
func (w *Warmer) run() {
	runCtx, cancel := context.WithTimeout(w.ctx, 2*time.Minute)
	defer cancel()

	start := time.Now()

	ids, found, err := w.catalog.ListStores(runCtx)
	if err != nil || !found {
		w.logger.Warn("Warmup catalog refresh failed", zap.Error(err))
		return
	}

	warmed := 0
	for _, storeID := range ids {
		if runCtx.Err() != nil {
			return
		}
		if _, ok, err := w.roots.LastRoot(runCtx, storeID); err == nil && ok {
			warmed++
		}
	}

	w.logger.Debug("Warmup pass completed",
		zap.Int("stores", len(ids)),
		zap.Int("roots_warmed", warmed),
		zap.Duration("elapsed", time.Since(start)))
}
