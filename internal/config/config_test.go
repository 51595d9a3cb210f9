package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 40064 {
		t.Fatalf("expected default port 40064, got %d", cfg.Server.Port)
	}
	if cfg.Crawler.CollectorConcurrency != 2 || cfg.Crawler.MonthConcurrency != 2 {
		t.Fatalf("expected default concurrency 2/2, got %+v", cfg.Crawler)
	}
	if cfg.Notifier.RootSubject != "public.broker" {
		t.Fatalf("expected default root subject, got %q", cfg.Notifier.RootSubject)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
crawler:
  max_retries: 5
  backoff_ms: 2000
  collector_concurrency: 4
  month_concurrency: 3
notifier:
  url: nats://localhost:4222
  root_subject: internal.test
meta_retention_days: 10
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Crawler.CollectorConcurrency != 4 || cfg.Crawler.MonthConcurrency != 3 {
		t.Fatalf("expected crawler concurrency overrides to apply, got %+v", cfg.Crawler)
	}
	if cfg.Notifier.URL != "nats://localhost:4222" || cfg.Notifier.RootSubject != "internal.test" {
		t.Fatalf("expected notifier overrides to apply, got %+v", cfg.Notifier)
	}
	if got := cfg.Crawler.BackoffDuration(); got != 2*time.Second {
		t.Fatalf("expected backoff duration 2s, got %v", got)
	}
	if got := cfg.MetaRetention(); got != 10*24*time.Hour {
		t.Fatalf("expected meta retention 10 days, got %v", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BGPKIT_BROKER_SERVER_PORT", "9999")
	t.Setenv("BGPKIT_BROKER_NATS_URL", "nats://envhost:4222")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("expected env override port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Notifier.URL != "nats://envhost:4222" {
		t.Fatalf("expected env override notifier URL, got %q", cfg.Notifier.URL)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:            ServerConfig{Port: 8080},
		Store:             StoreConfig{Path: "./x.sqlite3"},
		Crawler:           CrawlerConfig{CollectorConcurrency: 1, MonthConcurrency: 1},
		MetaRetentionDays: 30,
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "missing store path",
			cfg: func() Config {
				c := base
				c.Store.Path = ""
				return c
			}(),
			want: "store.path",
		},
		{
			name: "invalid collector concurrency",
			cfg: func() Config {
				c := base
				c.Crawler.CollectorConcurrency = 0
				return c
			}(),
			want: "crawler.collector_concurrency",
		},
		{
			name: "invalid month concurrency",
			cfg: func() Config {
				c := base
				c.Crawler.MonthConcurrency = 0
				return c
			}(),
			want: "crawler.month_concurrency",
		},
		{
			name: "invalid meta retention",
			cfg: func() Config {
				c := base
				c.MetaRetentionDays = 0
				return c
			}(),
			want: "meta_retention_days",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
