// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Store         StoreConfig         `yaml:"store"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Provider      ProviderConfig      `yaml:"provider"`
	Upload        UploadConfig        `yaml:"upload"`
	Alerts        AlertsConfig        `yaml:"alerts"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StoreConfig selects the history/snapshot storage backend and its caps.
type StoreConfig struct {
	Backend        string `yaml:"backend"` // memory, postgres, redis
	MaxHistory     int    `yaml:"max_history"`
	MaxSnapshots   int    `yaml:"max_snapshots"`
	MaxUploads     int    `yaml:"max_uploads"`
	MaxAlertBuffer int    `yaml:"max_alert_buffer"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// RedisConfig defines Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ProviderConfig defines remote inventory provider settings.
type ProviderConfig struct {
	Endpoint    string          `yaml:"endpoint"`
	AccountID   string          `yaml:"account_id"`
	APIKey      string          `yaml:"api_key"`
	PageSize    int             `yaml:"page_size"`
	CallTimeout time.Duration   `yaml:"call_timeout"`
	DedupPolicy string          `yaml:"dedup_policy"` // reject, last_wins, keep_all
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines provider API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// UploadConfig defines bulk upload pipeline settings.
type UploadConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	BatchPause time.Duration `yaml:"batch_pause"`
}

// AlertsConfig defines alert evaluation settings.
type AlertsConfig struct {
	CriticalThreshold int            `yaml:"critical_threshold"`
	WarningThreshold  int            `yaml:"warning_threshold"`
	ScaleWithStock    bool           `yaml:"scale_with_stock"`
	Overrides         map[string]int `yaml:"overrides"` // SKU -> critical threshold
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Email   EmailConfig         `yaml:"email"`
	Slack   SlackConfig         `yaml:"slack"`
	SMS     SMSConfig           `yaml:"sms"`
	Webhook WebhookNotifyConfig `yaml:"webhook"`
}

// EmailConfig defines SMTP delivery settings.
type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
}

// SMSConfig defines SMS gateway settings.
type SMSConfig struct {
	Enabled      bool     `yaml:"enabled"`
	AccountSID   string   `yaml:"account_sid"`
	AuthToken    string   `yaml:"auth_token"`
	From         string   `yaml:"from"`
	PhoneNumbers []string `yaml:"phone_numbers"`
}

// WebhookNotifyConfig defines generic webhook settings.
type WebhookNotifyConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// ScheduleConfig defines cron intervals and retention.
type ScheduleConfig struct {
	SyncInterval    time.Duration `yaml:"sync_interval"`
	DailySnapshot   string        `yaml:"daily_snapshot"`   // cron spec
	WeeklySnapshot  string        `yaml:"weekly_snapshot"`  // cron spec
	MonthlySnapshot string        `yaml:"monthly_snapshot"` // cron spec
	RetentionDays   int           `yaml:"retention_days"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyStoreDefaults(&cfg.Store)
	applyDatabaseDefaults(&cfg.Database)
	applyRedisDefaults(&cfg.Redis)
	applyProviderDefaults(&cfg.Provider)
	applyUploadDefaults(&cfg.Upload)
	applyAlertsDefaults(&cfg.Alerts)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyStoreDefaults(s *StoreConfig) {
	if s.Backend == "" {
		s.Backend = "memory"
	}
	if s.MaxHistory == 0 {
		s.MaxHistory = 10000
	}
	if s.MaxSnapshots == 0 {
		s.MaxSnapshots = 120
	}
	if s.MaxUploads == 0 {
		s.MaxUploads = 50
	}
	if s.MaxAlertBuffer == 0 {
		s.MaxAlertBuffer = 200
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyRedisDefaults(r *RedisConfig) {
	if r.Addr == "" {
		r.Addr = "localhost:6379"
	}
}

func applyProviderDefaults(p *ProviderConfig) {
	if p.PageSize == 0 {
		p.PageSize = 100
	}
	if p.CallTimeout == 0 {
		p.CallTimeout = 30 * time.Second
	}
	if p.DedupPolicy == "" {
		p.DedupPolicy = "last_wins"
	}
	applyRateLimitDefaults(&p.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 10000
	}
}

func applyUploadDefaults(u *UploadConfig) {
	if u.BatchSize == 0 {
		u.BatchSize = 50
	}
	if u.BatchPause == 0 {
		u.BatchPause = time.Second
	}
}

func applyAlertsDefaults(a *AlertsConfig) {
	if a.CriticalThreshold == 0 {
		a.CriticalThreshold = 5
	}
	if a.WarningThreshold == 0 {
		a.WarningThreshold = 20
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.SyncInterval == 0 {
		s.SyncInterval = 30 * time.Minute
	}
	if s.DailySnapshot == "" {
		s.DailySnapshot = "0 2 * * *"
	}
	if s.WeeklySnapshot == "" {
		s.WeeklySnapshot = "0 3 * * 0"
	}
	if s.MonthlySnapshot == "" {
		s.MonthlySnapshot = "0 4 1 * *"
	}
	if s.RetentionDays == 0 {
		s.RetentionDays = 90
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Provider.Endpoint == "" {
		errs = append(errs, fmt.Errorf("provider.endpoint is required"))
	}
	if cfg.Provider.AccountID == "" {
		errs = append(errs, fmt.Errorf("provider.account_id is required"))
	}

	switch cfg.Provider.DedupPolicy {
	case "reject", "last_wins", "keep_all":
	default:
		errs = append(errs, fmt.Errorf(
			"provider.dedup_policy must be one of: reject, last_wins, keep_all (got %q)",
			cfg.Provider.DedupPolicy,
		))
	}

	switch cfg.Store.Backend {
	case "memory":
	case "postgres":
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required when store.backend is postgres"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when store.backend is postgres"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when store.backend is postgres"))
		}
	case "redis":
		if cfg.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("redis.addr is required when store.backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"store.backend must be one of: memory, postgres, redis (got %q)",
			cfg.Store.Backend,
		))
	}

	if cfg.Alerts.WarningThreshold < cfg.Alerts.CriticalThreshold {
		errs = append(errs, fmt.Errorf(
			"alerts.warning_threshold (%d) must be >= alerts.critical_threshold (%d)",
			cfg.Alerts.WarningThreshold, cfg.Alerts.CriticalThreshold,
		))
	}

	return errors.Join(errs...)
}
