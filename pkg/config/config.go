package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	MySQL      MySQLConfig      `yaml:"mysql"`
	Redis      RedisConfig      `yaml:"redis"`
	Queue      QueueConfig      `yaml:"queue"`
	Selector   SelectorConfig   `yaml:"selector"`
	Retry      RetryConfig      `yaml:"retry"`
	Generation GenerationConfig `yaml:"generation"`
	Jobs       JobsConfig       `yaml:"jobs"`
	Logger     LoggerConfig     `yaml:"logger"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Mode   string `yaml:"mode"`    // debug, release
	APIKey string `yaml:"api_key"` // API key for executor authentication (optional, if empty, auth is disabled)
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// QueueConfig execution dispatch queue configuration
type QueueConfig struct {
	Concurrency     int `yaml:"concurrency"`      // queue processing concurrency
	MaxRetry        int `yaml:"max_retry"`        // asynq-level delivery retry count
	DispatchTimeout int `yaml:"dispatch_timeout"` // per-subtask execution timeout (seconds)
}

// SelectorConfig vendor selection configuration
type SelectorConfig struct {
	DefaultStrategy  string   `yaml:"default_strategy"`  // priority_first, load_balancing, fail_over, cost_optimal
	ProviderPriority []string `yaml:"provider_priority"` // explicit provider ordering for group primaries
	FailureThreshold int      `yaml:"failure_threshold"` // consecutive failures before a vendor is opened
	CooldownSeconds  int      `yaml:"cooldown_seconds"`  // circuit breaker recovery window (seconds)
}

// RetryConfig retry orchestration configuration
type RetryConfig struct {
	MaxRetries int `yaml:"max_retries"` // per-subtask automatic retry cap
}

// GenerationConfig subtask generation configuration
type GenerationConfig struct {
	LockTTLSeconds int `yaml:"lock_ttl_seconds"` // per-task generation lock TTL
}

// JobsConfig background job configuration
type JobsConfig struct {
	CatalogRefreshInterval int `yaml:"catalog_refresh_interval"` // model catalog refresh interval (seconds)
	StaleSweepInterval     int `yaml:"stale_sweep_interval"`     // stale running-subtask sweep interval (seconds)
	StaleTimeout           int `yaml:"stale_timeout"`            // running subtasks older than this are marked timed out (seconds)
	MetricsPublishInterval int `yaml:"metrics_publish_interval"` // vendor metrics snapshot publish interval (seconds)
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	validateAndApplyDefaults(&cfg)

	GlobalConfig = &cfg
	return nil
}

// validateAndApplyDefaults replaces invalid values with safe defaults so a
// partially filled config file still yields an operational service.
func validateAndApplyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Queue.Concurrency <= 0 {
		cfg.Queue.Concurrency = 20
	}
	if cfg.Queue.DispatchTimeout <= 0 {
		cfg.Queue.DispatchTimeout = 600
	}
	if cfg.Selector.DefaultStrategy == "" {
		cfg.Selector.DefaultStrategy = "priority_first"
	}
	if cfg.Selector.FailureThreshold <= 0 {
		cfg.Selector.FailureThreshold = 3
	}
	if cfg.Selector.CooldownSeconds <= 0 {
		cfg.Selector.CooldownSeconds = int((5 * time.Minute).Seconds())
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry.MaxRetries = 2
	}
	if cfg.Generation.LockTTLSeconds <= 0 {
		cfg.Generation.LockTTLSeconds = 60
	}
	if cfg.Jobs.CatalogRefreshInterval <= 0 {
		cfg.Jobs.CatalogRefreshInterval = 300
	}
	if cfg.Jobs.StaleSweepInterval <= 0 {
		cfg.Jobs.StaleSweepInterval = 60
	}
	if cfg.Jobs.StaleTimeout <= 0 {
		cfg.Jobs.StaleTimeout = 900
	}
	if cfg.Jobs.MetricsPublishInterval <= 0 {
		cfg.Jobs.MetricsPublishInterval = 15
	}
}
