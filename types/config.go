package types

type ConfigManager interface {
	Load() error
	GetConfig() *ServiceConfig
}

type ServiceConfig struct {
	Name      string           `yaml:"name" json:"name" validate:"required"`
	Version   string           `yaml:"version" json:"version"`
	Server    *ServerConfig    `yaml:"server" json:"server"`
	Logger    *LoggerConfig    `yaml:"logger" json:"logger"`
	Cache     *CacheConfig     `yaml:"cache" json:"cache"`
	DataLayer *DataLayerConfig `yaml:"data_layer" json:"data_layer" validate:"required"`
	Notifier  *NotifierConfig  `yaml:"notifier" json:"notifier"`
	Warmup    *WarmupConfig    `yaml:"warmup" json:"warmup"`
	Metrics   *MetricsConfig   `yaml:"metrics" json:"metrics"`
	Gateway   *GatewayConfig   `yaml:"gateway" json:"gateway"`
	Stores    map[string]string `yaml:"stores" json:"stores"`
}

type ServerConfig struct {
	Host            string     `yaml:"host" json:"host"`
	Port            int        `yaml:"port" json:"port" validate:"min=0,max=65535"`
	ReadTimeout     int        `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    int        `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout int        `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	Compression     bool       `yaml:"compression" json:"compression"`
	TLS             *TLSConfig `yaml:"tls" json:"tls"`
}

type TLSConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	CertFile string   `yaml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile  string   `yaml:"key_file,omitempty" json:"key_file,omitempty"`
	AutoCert bool     `yaml:"auto_cert" json:"auto_cert"`
	Domains  []string `yaml:"domains,omitempty" json:"domains,omitempty"`
	CacheDir string   `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
}

type LoggerConfig struct {
	Level  string      `yaml:"level" json:"level"`
	Config interface{} `yaml:"config" json:"config"`
}

type CacheConfig struct {
	Volatile *VolatileConfig `yaml:"volatile" json:"volatile"`
	Durable  *DurableConfig  `yaml:"durable" json:"durable"`
}

type VolatileConfig struct {
	MaxEntries      int    `yaml:"max_entries" json:"max_entries"`
	CleanupInterval string `yaml:"cleanup_interval" json:"cleanup_interval"`
}

type DurableConfig struct {
	Enabled bool        `yaml:"enabled" json:"enabled"`
	Type    string      `yaml:"type" json:"type" validate:"required_if=Enabled true"`
	Config  interface{} `yaml:"config" json:"config"`
}

type DataLayerConfig struct {
	BaseURL        string         `yaml:"base_url" json:"base_url" validate:"required"`
	Timeout        string         `yaml:"timeout" json:"timeout"`
	Retries        int            `yaml:"retries" json:"retries"`
	DefaultAddress string         `yaml:"default_address" json:"default_address"`
	CircuitBreaker *BreakerConfig `yaml:"circuit_breaker" json:"circuit_breaker"`
}

type BreakerConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	FailureThreshold int    `yaml:"failure_threshold" json:"failure_threshold"`
	RecoveryTimeout  string `yaml:"recovery_timeout" json:"recovery_timeout"`
	HalfOpenRequests int    `yaml:"half_open_requests" json:"half_open_requests"`
}

type NotifierConfig struct {
	Enabled   bool             `yaml:"enabled" json:"enabled"`
	QueueSize int              `yaml:"queue_size" json:"queue_size"`
	Webhook   *WebhookConfig   `yaml:"webhook" json:"webhook"`
	WebSocket *WebSocketConfig `yaml:"websocket" json:"websocket"`
}

type WebhookConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url" json:"url" validate:"required_if=Enabled true"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

type WebSocketConfig struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	URL          string `yaml:"url" json:"url" validate:"required_if=Enabled true"`
	PingInterval string `yaml:"ping_interval" json:"ping_interval"`
	WriteWait    string `yaml:"write_wait" json:"write_wait"`
}

type WarmupConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Schedule string `yaml:"schedule" json:"schedule" validate:"required_if=Enabled true"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

type GatewayConfig struct {
	BaseURI       string `yaml:"base_uri" json:"base_uri"`
	OriginTimeout string `yaml:"origin_timeout" json:"origin_timeout"`
}
