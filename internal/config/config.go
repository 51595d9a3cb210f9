// Package config loads and validates broker configuration via Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every service configuration knob, sourced from defaults,
// an optional config file, and BGPKIT_BROKER_*-prefixed environment
// variables (spec.md §6).
type Config struct {
	// URL is the SDK's default API endpoint setting. It is loaded here but
	// no package reads it: pkg/broker has no HTTP client mode.
	URL string `mapstructure:"url"`

	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Backup  BackupConfig  `mapstructure:"backup"`
	Peers   PeersConfig   `mapstructure:"peers"`

	// HeartbeatURL is pinged after each successful update cycle.
	HeartbeatURL string `mapstructure:"heartbeat_url"`
	// MetaRetentionDays bounds how long meta rows are kept.
	MetaRetentionDays int `mapstructure:"meta_retention_days"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Root string `mapstructure:"root"`
}

// StoreConfig points at the local SQLite Index Store file and its remote
// bootstrap snapshot.
type StoreConfig struct {
	Path            string `mapstructure:"path"`
	BootstrapURL    string `mapstructure:"bootstrap_url"`
	BootstrapOnBoot bool   `mapstructure:"bootstrap_on_boot"`
}

// CrawlerConfig governs fetch retry and concurrency behavior.
type CrawlerConfig struct {
	MaxRetries           int `mapstructure:"max_retries"`
	BackoffMs            int `mapstructure:"backoff_ms"`
	CollectorConcurrency int `mapstructure:"collector_concurrency"`
	MonthConcurrency     int `mapstructure:"month_concurrency"`
}

// NotifierConfig configures the NATS-based new-file notifier.
type NotifierConfig struct {
	URL         string `mapstructure:"url"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	RootSubject string `mapstructure:"root_subject"`
}

// BackupConfig configures the periodic Index Store export.
type BackupConfig struct {
	To            string `mapstructure:"to"`
	IntervalHours int    `mapstructure:"interval_hours"`
	HeartbeatURL  string `mapstructure:"heartbeat_url"`
}

// PeersConfig points at the peer-information read-through service.
type PeersConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Load builds a Config from disk/environment. path may be empty to skip
// reading a config file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("url", "https://api.broker.bgpkit.com")
	v.SetDefault("server.port", 40064)
	v.SetDefault("server.root", "")
	v.SetDefault("store.path", "./bgpkit_broker.sqlite3")
	v.SetDefault("store.bootstrap_url", "https://spaces.bgpkit.org/broker/bgpkit_broker.sqlite3")
	v.SetDefault("store.bootstrap_on_boot", true)
	v.SetDefault("crawler.max_retries", 3)
	v.SetDefault("crawler.backoff_ms", 1000)
	v.SetDefault("crawler.collector_concurrency", 2)
	v.SetDefault("crawler.month_concurrency", 2)
	v.SetDefault("notifier.root_subject", "public.broker")
	v.SetDefault("backup.interval_hours", 6)
	v.SetDefault("meta_retention_days", 30)
}

// bindEnv binds each key to the exact BGPKIT_BROKER_* variable name from
// spec.md §6, rather than relying on viper's dot-to-underscore
// replacement, since several of those names (e.g. BGPKIT_BROKER_NATS_URL)
// don't mirror the nested struct shape one-for-one.
func bindEnv(v *viper.Viper) {
	binds := map[string]string{
		"url":                             "BGPKIT_BROKER_URL",
		"heartbeat_url":                   "BGPKIT_BROKER_HEARTBEAT_URL",
		"meta_retention_days":             "BGPKIT_BROKER_META_RETENTION_DAYS",
		"server.port":                     "BGPKIT_BROKER_SERVER_PORT",
		"server.root":                     "BGPKIT_BROKER_SERVER_ROOT",
		"store.path":                      "BGPKIT_BROKER_STORE_PATH",
		"store.bootstrap_url":             "BGPKIT_BROKER_STORE_BOOTSTRAP_URL",
		"store.bootstrap_on_boot":         "BGPKIT_BROKER_STORE_BOOTSTRAP_ON_BOOT",
		"crawler.max_retries":             "BGPKIT_BROKER_CRAWLER_MAX_RETRIES",
		"crawler.backoff_ms":              "BGPKIT_BROKER_CRAWLER_BACKOFF_MS",
		"crawler.collector_concurrency":   "BGPKIT_BROKER_CRAWLER_COLLECTOR_CONCURRENCY",
		"crawler.month_concurrency":       "BGPKIT_BROKER_CRAWLER_MONTH_CONCURRENCY",
		"notifier.url":                    "BGPKIT_BROKER_NATS_URL",
		"notifier.user":                   "BGPKIT_BROKER_NATS_USER",
		"notifier.password":               "BGPKIT_BROKER_NATS_PASSWORD",
		"notifier.root_subject":           "BGPKIT_BROKER_NATS_ROOT_SUBJECT",
		"backup.to":                       "BGPKIT_BROKER_BACKUP_TO",
		"backup.interval_hours":           "BGPKIT_BROKER_BACKUP_INTERVAL_HOURS",
		"backup.heartbeat_url":            "BGPKIT_BROKER_BACKUP_HEARTBEAT_URL",
		"peers.base_url":                  "BGPKIT_BROKER_PEERS_BASE_URL",
	}
	for key, env := range binds {
		_ = v.BindEnv(key, env)
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must be set")
	}
	if c.Crawler.MaxRetries < 0 {
		return fmt.Errorf("crawler.max_retries must be >= 0")
	}
	if c.Crawler.CollectorConcurrency <= 0 {
		return fmt.Errorf("crawler.collector_concurrency must be > 0")
	}
	if c.Crawler.MonthConcurrency <= 0 {
		return fmt.Errorf("crawler.month_concurrency must be > 0")
	}
	if c.MetaRetentionDays <= 0 {
		return fmt.Errorf("meta_retention_days must be > 0")
	}
	return nil
}

// BackoffDuration converts crawler.backoff_ms into a time.Duration.
func (c CrawlerConfig) BackoffDuration() time.Duration {
	return time.Duration(c.BackoffMs) * time.Millisecond
}

// MetaRetention converts meta_retention_days into a time.Duration.
func (c Config) MetaRetention() time.Duration {
	return time.Duration(c.MetaRetentionDays) * 24 * time.Hour
}

// BackupInterval converts backup.interval_hours into a time.Duration.
func (c BackupConfig) BackupInterval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}
