// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/IDD-NAJ/ulster-delt-sub000/models"
)

type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Redis   RedisConfig
	Monitor MonitorConfig
	Email   EmailConfig
	Chat    ChatConfig
	Webhook WebhookConfig
	Archive ArchiveConfig
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"redis"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"100"`
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type MonitorConfig struct {
	UpdateInterval  time.Duration `envconfig:"MONITOR_UPDATE_INTERVAL" default:"60s"`
	RetentionPeriod time.Duration `envconfig:"MONITOR_RETENTION_PERIOD" default:"24h"`
	MaxDataPoints   int           `envconfig:"MONITOR_MAX_DATA_POINTS" default:"1000"`

	Thresholds Thresholds
	Cooldowns  Cooldowns
}

// Thresholds are the per-metric alerting limits. A rule fires when the
// observed value exceeds its threshold.
type Thresholds struct {
	CPU          float64 `envconfig:"MONITOR_THRESHOLD_CPU" default:"80"`
	Memory       float64 `envconfig:"MONITOR_THRESHOLD_MEMORY" default:"85"`
	ErrorRate    float64 `envconfig:"MONITOR_THRESHOLD_ERROR_RATE" default:"5"`
	ResponseTime float64 `envconfig:"MONITOR_THRESHOLD_RESPONSE_TIME" default:"2000"`
	ActiveUsers  float64 `envconfig:"MONITOR_THRESHOLD_ACTIVE_USERS" default:"1000"`
	FailedLogins float64 `envconfig:"MONITOR_THRESHOLD_FAILED_LOGINS" default:"10"`
	APIErrors    float64 `envconfig:"MONITOR_THRESHOLD_API_ERRORS" default:"10"`
	DiskSpace    float64 `envconfig:"MONITOR_THRESHOLD_DISK_SPACE" default:"90"`
}

// Cooldowns are the per-severity suppression windows.
type Cooldowns struct {
	Critical time.Duration `envconfig:"MONITOR_COOLDOWN_CRITICAL" default:"5m"`
	High     time.Duration `envconfig:"MONITOR_COOLDOWN_HIGH" default:"15m"`
	Medium   time.Duration `envconfig:"MONITOR_COOLDOWN_MEDIUM" default:"30m"`
	Low      time.Duration `envconfig:"MONITOR_COOLDOWN_LOW" default:"1h"`
}

// For returns the cooldown window for a severity.
func (c Cooldowns) For(sev models.Severity) time.Duration {
	switch sev {
	case models.SeverityCritical:
		return c.Critical
	case models.SeverityHigh:
		return c.High
	case models.SeverityMedium:
		return c.Medium
	default:
		return c.Low
	}
}

type EmailConfig struct {
	Enabled bool     `envconfig:"ALERT_EMAIL_ENABLED" default:"false"`
	From    string   `envconfig:"ALERT_EMAIL_FROM"`
	To      []string `envconfig:"ALERT_EMAIL_TO"`
	Region  string   `envconfig:"ALERT_EMAIL_AWS_REGION" default:"eu-west-1"`
}

type ChatConfig struct {
	Enabled    bool   `envconfig:"ALERT_CHAT_ENABLED" default:"false"`
	WebhookURL string `envconfig:"ALERT_CHAT_WEBHOOK_URL"`
}

type WebhookConfig struct {
	Enabled bool   `envconfig:"ALERT_WEBHOOK_ENABLED" default:"false"`
	URL     string `envconfig:"ALERT_WEBHOOK_URL"`
}

type ArchiveConfig struct {
	Enabled    bool   `envconfig:"MINIO_ARCHIVE_ENABLED" default:"false"`
	Endpoint   string `envconfig:"MINIO_ENDPOINT" default:"minio:9000"`
	AccessKey  string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey  string `envconfig:"MINIO_SECRET_KEY"`
	Bucket     string `envconfig:"MINIO_BUCKET" default:"monitoring-archive"`
	UseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	EveryTicks int    `envconfig:"MINIO_ARCHIVE_EVERY_TICKS" default:"10"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to load environment config: %w", err)
	}
	return &cfg, nil
}
