package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ostafen/clover"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

const cloverCollection = "cache_entries"

type CloverConfig struct {
	Path string `json:"path"`
}

// CloverCache is a file-backed durable tier for deployments without a
// redis instance.
type CloverCache struct {
	logger  types.Logger
	config  *CloverConfig
	db      *clover.DB
	started int32
}

func NewCloverCache(_ context.Context, logger types.Logger, config *types.DurableConfig) (types.DurableTier, error) {
	var cloverConfig = &CloverConfig{
		Path: "./cache-data",
	}

	if config.Config != nil {
		err := utils.UnmarshalConfig(config.Config, cloverConfig)
		if err != nil {
			return nil, types.WrapError(err, "failed to unmarshal clover cache config")
		}
	}

	db, err := clover.Open(cloverConfig.Path)
	if err != nil {
		return nil, types.Errorf(types.ErrCacheConnectionFailed, "clover: %v", err)
	}

	exists, err := db.HasCollection(cloverCollection)
	if err != nil {
		return nil, types.WrapError(err, "failed to check cache collection")
	}
	if !exists {
		if err := db.CreateCollection(cloverCollection); err != nil {
			return nil, types.WrapError(err, "failed to create cache collection")
		}
	}

	return &CloverCache{
		logger: logger,
		config: cloverConfig,
		db:     db,
	}, nil
}

func (c *CloverCache) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, types.ErrCacheKeyEmpty
	}

	doc, err := c.db.Query(cloverCollection).Where(clover.Field("key").Eq(key)).FindFirst()
	if err != nil {
		c.logger.Error("Failed to get durable cache entry",
			zap.String("key", key), zap.Error(err))
		return "", false, types.WrapError(err, "failed to get durable cache entry")
	}
	if doc == nil {
		return "", false, nil
	}

	value, ok := doc.Get("value").(string)
	if !ok {
		return "", false, nil
	}

	return value, true, nil
}

func (c *CloverCache) Set(_ context.Context, key, value string) error {
	if key == "" {
		return types.ErrCacheKeyEmpty
	}

	if err := c.db.Query(cloverCollection).Where(clover.Field("key").Eq(key)).Delete(); err != nil {
		return types.WrapError(err, "failed to replace durable cache entry")
	}

	doc := clover.NewDocument()
	doc.Set("key", key)
	doc.Set("value", value)
	doc.Set("updated_at", time.Now().Unix())

	if _, err := c.db.InsertOne(cloverCollection, doc); err != nil {
		c.logger.Error("Failed to set durable cache entry",
			zap.String("key", key), zap.Error(err))
		return types.WrapError(err, "failed to set durable cache entry")
	}

	return nil
}

func (c *CloverCache) Start() error {
	if !atomic.CompareAndSwapInt32(&c.started, 0, 1) {
		return nil
	}
	c.logger.Info("Clover durable tier started", zap.String("path", c.config.Path))
	return nil
}

func (c *CloverCache) Stop() error {
	if !atomic.CompareAndSwapInt32(&c.started, 1, 0) {
		return nil
	}

	if err := c.db.Close(); err != nil {
		return types.WrapError(err, "failed to close clover db")
	}

	c.logger.Info("Clover durable tier stopped")
	return nil
}

func (c *CloverCache) IsRunning() bool {
	return atomic.LoadInt32(&c.started) == 1
}
