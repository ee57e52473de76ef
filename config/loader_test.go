package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
name: gw-test
data_layer:
  base_url: http://localhost:8562
`)

	cfg, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gw-test", cfg.Name)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8575, cfg.Server.Port)
	assert.Equal(t, 10000, cfg.Cache.Volatile.MaxEntries)
	assert.Equal(t, "redis", cfg.Cache.Durable.Type)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "30s", cfg.Gateway.OriginTimeout)
}

func TestLoadFromFileFullConfig(t *testing.T) {
	path := writeConfigFile(t, `
name: gw-test
server:
  host: 127.0.0.1
  port: 9000
  compression: true
cache:
  volatile:
    max_entries: 42
    cleanup_interval: 1m
  durable:
    enabled: false
data_layer:
  base_url: http://localhost:8562
  timeout: 15s
  retries: 3
stores:
  store-a: Alpha
`)

	cfg, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Server.Compression)
	assert.Equal(t, 42, cfg.Cache.Volatile.MaxEntries)
	assert.False(t, cfg.Cache.Durable.Enabled)
	assert.Equal(t, "15s", cfg.DataLayer.Timeout)
	assert.Equal(t, 3, cfg.DataLayer.Retries)
	assert.Equal(t, "Alpha", cfg.Stores["store-a"])
}

func TestLoadFromFileMissingDataLayerFails(t *testing.T) {
	path := writeConfigFile(t, `
name: gw-test
`)

	_, err := NewLoader().LoadFromFile(path)
	assert.ErrorIs(t, err, types.ErrConfigValidateFailed)
}

func TestLoadFromFileMissingNameFails(t *testing.T) {
	path := writeConfigFile(t, `
data_layer:
  base_url: http://localhost:8562
`)

	_, err := NewLoader().LoadFromFile(path)
	assert.ErrorIs(t, err, types.ErrConfigValidateFailed)
}

func TestLoadFromFileUnreadablePath(t *testing.T) {
	_, err := NewLoader().LoadFromFile(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadFromFileEmptyPath(t *testing.T) {
	_, err := NewLoader().LoadFromFile("")
	assert.ErrorIs(t, err, types.ErrConfigNotFound)
}

func TestLoadFromFileBadYAML(t *testing.T) {
	path := writeConfigFile(t, "name: [unclosed")

	_, err := NewLoader().LoadFromFile(path)
	assert.ErrorIs(t, err, types.ErrConfigParseFailed)
}
