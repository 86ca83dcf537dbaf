package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// state store persistence
	StorageBackend   string `toml:"storage_backend"`
	StorageKeyPrefix string `toml:"storage_key_prefix"`
	MemoryStoreBytes int    `toml:"memory_store_bytes"`
	RedisHost        string `toml:"redis_host"`
	RedisPort        string `toml:"redis_port"`
	PostgresHost     string `toml:"postgres_host"`
	PostgresPort     string `toml:"postgres_port"`
	PostgresDBName   string `toml:"postgres_db_name"`

	// http
	AllowedOrigins []string `toml:"allowed_origins"`
	TracingEnabled bool     `toml:"tracing_enabled"`

	// payments
	PaymentsDomain             string `toml:"payments_domain"`
	TrialPeriodDays            int64  `toml:"trial_period_days"`
	PaymentsRateLimitPerMinute int    `toml:"payments_rate_limit_per_minute"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

// Secrets are never read from the TOML file.
type Secrets struct {
	RedisPassword       string `env:"WEEKLYFIT_REDIS_PASS"`
	PostgresUser        string `env:"WEEKLYFIT_POSTGRES_USER, default=postgres"`
	PostgresPassword    string `env:"WEEKLYFIT_POSTGRES_PASS"`
	APITokenHash        string `env:"WEEKLYFIT_API_TOKEN_HASH"`
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	SentryDSN           string `env:"SENTRY_DSN"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("env [%s] not present in config", env)
	}
	cfg.Environment = strings.ToLower(env)
	return cfg, nil
}

// Load reads the TOML config file and returns the section for env,
// with defaults applied and validated.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid [%s] config: %w", env, err)
	}

	return cfg, nil
}

func LoadSecrets(ctx context.Context) (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process(ctx, &s); err != nil {
		return nil, fmt.Errorf("process env secrets: %w", err)
	}
	return &s, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.StorageBackend == "" {
		c.StorageBackend = StorageRedis
	}
	if c.MemoryStoreBytes == 0 {
		c.MemoryStoreBytes = 8 * 1024 * 1024
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.TrialPeriodDays == 0 {
		c.TrialPeriodDays = 30
	}
	if c.PaymentsRateLimitPerMinute == 0 {
		c.PaymentsRateLimitPerMinute = 30
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageRedis:
		if c.RedisHost == "" {
			return errors.New("redis_host must be set for the redis storage backend")
		}
	case StoragePostgres:
		if c.PostgresHost == "" || c.PostgresDBName == "" {
			return errors.New("postgres_host and postgres_db_name must be set for the postgres storage backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}
