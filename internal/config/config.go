package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendBadger    = "badger"
	BackendPathstore = "pathstore"
	BackendRedis     = "redis"
	BackendMemory    = "memory"
)

type Config struct {
	Port string

	// Auth
	APIKey      string
	CORSOrigins []string

	// Claude generation
	AnthropicAPIKey    string
	AnthropicBaseURL   string
	AnthropicModel     string
	AnthropicFastModel string

	// Narration
	OpenAIAPIKey  string
	OpenAIBaseURL string
	TTSModel      string
	TTSVoice      string

	// Generation rate limit, shared by every gateway call
	RateLimitCount    int
	RateLimitInterval time.Duration

	// Editing
	AutosaveDelay time.Duration
	HistoryLimit  int
	FlushOnSwitch bool
	FlushOnClose  bool

	// Durable store
	StoreBackend    string
	StorePrefix     string
	BadgerPath      string
	PathstoreURL    string
	PathstoreAPIKey string
	RedisAddr       string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Briefs
	MaxUploadBytes       int64
	BriefMaxTokens       int
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey:      os.Getenv("COURSEDRAFT_API_KEY"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),

		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL:   envOr("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicModel:     envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AnthropicFastModel: envOr("ANTHROPIC_FAST_MODEL", "claude-haiku-4-5"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		TTSModel:      envOr("TTS_MODEL", "tts-1"),
		TTSVoice:      envOr("TTS_VOICE", "alloy"),

		RateLimitCount:    envInt("RATE_LIMIT_COUNT", 15),
		RateLimitInterval: envDuration("RATE_LIMIT_INTERVAL", time.Minute),

		AutosaveDelay: envDuration("AUTOSAVE_DELAY", 3*time.Second),
		HistoryLimit:  envInt("HISTORY_LIMIT", 100),
		FlushOnSwitch: envBool("FLUSH_ON_SWITCH", false),
		FlushOnClose:  envBool("FLUSH_ON_CLOSE", true),

		StoreBackend:    strings.ToLower(envOr("STORE_BACKEND", BackendBadger)),
		StorePrefix:     envOr("STORE_PREFIX", "coursedraft"),
		BadgerPath:      envOr("BADGER_PATH", "./data"),
		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 20),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),

		MaxUploadBytes:       envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB
		BriefMaxTokens:       envInt("BRIEF_MAX_TOKENS", 1200),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.RateLimitCount <= 0 {
		cfg.RateLimitCount = 15
	}
	if cfg.RateLimitInterval <= 0 {
		cfg.RateLimitInterval = time.Minute
	}
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = 3 * time.Second
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.BriefMaxTokens <= 0 {
		cfg.BriefMaxTokens = 1200
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("COURSEDRAFT_API_KEY is required")
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	switch c.StoreBackend {
	case BackendBadger, BackendMemory:
	case BackendPathstore:
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required for the pathstore backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
