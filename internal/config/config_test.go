package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "RATE_LIMIT_COUNT", "RATE_LIMIT_INTERVAL", "AUTOSAVE_DELAY", "STORE_BACKEND", "CORS_ORIGINS", "FLUSH_ON_CLOSE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.RateLimitCount != 15 || cfg.RateLimitInterval != time.Minute {
		t.Errorf("unexpected rate limit %d/%s", cfg.RateLimitCount, cfg.RateLimitInterval)
	}
	if cfg.AutosaveDelay != 3*time.Second {
		t.Errorf("expected 3s autosave, got %s", cfg.AutosaveDelay)
	}
	if cfg.StoreBackend != BackendBadger || !cfg.FlushOnClose || cfg.FlushOnSwitch {
		t.Errorf("unexpected store/flush defaults %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadOverridesAndClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_COUNT", "3")
	t.Setenv("RATE_LIMIT_INTERVAL", "10s")
	t.Setenv("HISTORY_LIMIT", "-5")
	t.Setenv("WORKER_COUNT", "notanumber")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FLUSH_ON_SWITCH", "true")

	cfg := Load()
	if cfg.RateLimitCount != 3 || cfg.RateLimitInterval != 10*time.Second {
		t.Errorf("unexpected rate limit %d/%s", cfg.RateLimitCount, cfg.RateLimitInterval)
	}
	if cfg.HistoryLimit != 100 {
		t.Errorf("expected negative history limit to clamp to 100, got %d", cfg.HistoryLimit)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected invalid worker count to fall back, got %d", cfg.WorkerCount)
	}
	if cfg.StoreBackend != BackendRedis {
		t.Errorf("expected lowercased backend, got %q", cfg.StoreBackend)
	}
	if strings.Join(cfg.CORSOrigins, "|") != "https://a.example|https://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if !cfg.FlushOnSwitch {
		t.Error("expected FLUSH_ON_SWITCH to be read")
	}
}

func TestValidate(t *testing.T) {
	base := Config{APIKey: "k", AnthropicAPIKey: "a", StoreBackend: BackendBadger}
	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"api key", func(c *Config) { c.APIKey = "" }, "COURSEDRAFT_API_KEY"},
		{"anthropic key", func(c *Config) { c.AnthropicAPIKey = "" }, "ANTHROPIC_API_KEY"},
		{"pathstore key", func(c *Config) { c.StoreBackend = BackendPathstore }, "PATHSTORE_API_KEY"},
		{"redis addr", func(c *Config) { c.StoreBackend = BackendRedis }, "REDIS_ADDR"},
		{"backend", func(c *Config) { c.StoreBackend = "sqlite" }, "STORE_BACKEND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
