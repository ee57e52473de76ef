package cache

import (
	"context"
	"database/sql"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-datalayer-gateway/types"
	"github.com/saiset-co/sai-datalayer-gateway/utils"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
)`

type SQLiteConfig struct {
	Path string `json:"path"`
}

// SQLiteCache is a single-file durable tier backend.
type SQLiteCache struct {
	logger  types.Logger
	config  *SQLiteConfig
	db      *sql.DB
	started int32
}

func NewSQLiteCache(ctx context.Context, logger types.Logger, config *types.DurableConfig) (types.DurableTier, error) {
	var sqliteConfig = &SQLiteConfig{
		Path: "./cache.db",
	}

	if config.Config != nil {
		err := utils.UnmarshalConfig(config.Config, sqliteConfig)
		if err != nil {
			return nil, types.WrapError(err, "failed to unmarshal sqlite cache config")
		}
	}

	db, err := sql.Open("sqlite3", sqliteConfig.Path)
	if err != nil {
		return nil, types.Errorf(types.ErrCacheConnectionFailed, "sqlite: %v", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, types.WrapError(err, "failed to create cache table")
	}

	return &SQLiteCache{
		logger: logger,
		config: sqliteConfig,
		db:     db,
	}, nil
}

func (s *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, types.ErrCacheKeyEmpty
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("Failed to get durable cache entry",
			zap.String("key", key), zap.Error(err))
		return "", false, types.WrapError(err, "failed to get durable cache entry")
	}

	return value, true, nil
}

func (s *SQLiteCache) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return types.ErrCacheKeyEmpty
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, strftime('%s','now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		s.logger.Error("Failed to set durable cache entry",
			zap.String("key", key), zap.Error(err))
		return types.WrapError(err, "failed to set durable cache entry")
	}

	return nil
}

func (s *SQLiteCache) Start() error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return nil
	}
	s.logger.Info("SQLite durable tier started", zap.String("path", s.config.Path))
	return nil
}

func (s *SQLiteCache) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.started, 1, 0) {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return types.WrapError(err, "failed to close sqlite db")
	}

	s.logger.Info("SQLite durable tier stopped")
	return nil
}

func (s *SQLiteCache) IsRunning() bool {
	return atomic.LoadInt32(&s.started) == 1
}
