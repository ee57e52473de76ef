package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

type Loader struct {
	validator *validator.Validate
}

func NewLoader() *Loader {
	return &Loader{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (l *Loader) LoadFromFile(configPath string) (*types.ServiceConfig, error) {
	if configPath == "" {
		return nil, types.ErrConfigNotFound
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, types.WrapError(err, "failed to read config file")
	}

	config := &types.ServiceConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, types.Errorf(types.ErrConfigParseFailed, "%v", err)
	}

	applyDefaults(config)

	if err := l.validator.Struct(config); err != nil {
		return nil, types.Errorf(types.ErrConfigValidateFailed, "%v", err)
	}

	return config, nil
}

func applyDefaults(config *types.ServiceConfig) {
	if config.Server == nil {
		config.Server = &types.ServerConfig{}
	}
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8575
	}
	if config.Logger == nil {
		config.Logger = &types.LoggerConfig{Level: "info"}
	}
	if config.Cache == nil {
		config.Cache = &types.CacheConfig{}
	}
	if config.Cache.Volatile == nil {
		config.Cache.Volatile = &types.VolatileConfig{
			MaxEntries:      10000,
			CleanupInterval: "5m",
		}
	}
	if config.Cache.Durable == nil {
		config.Cache.Durable = &types.DurableConfig{Enabled: true, Type: "redis"}
	}
	if config.Metrics == nil {
		config.Metrics = &types.MetricsConfig{Enabled: true, Path: "/metrics"}
	}
	if config.Gateway == nil {
		config.Gateway = &types.GatewayConfig{}
	}
	if config.Gateway.OriginTimeout == "" {
		config.Gateway.OriginTimeout = "30s"
	}
}
