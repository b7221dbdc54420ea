package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/coursedraft/internal/api"
	"github.com/dgallion1/coursedraft/internal/config"
	"github.com/dgallion1/coursedraft/internal/editor"
	"github.com/dgallion1/coursedraft/internal/gateway"
	"github.com/dgallion1/coursedraft/internal/kvstore"
	"github.com/dgallion1/coursedraft/internal/pathstore"
	"github.com/dgallion1/coursedraft/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not read .env", "error", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	opts := editor.Options{
		HistoryLimit:  cfg.HistoryLimit,
		AutosaveDelay: cfg.AutosaveDelay,
		FlushOnSwitch: cfg.FlushOnSwitch,
		FlushOnClose:  cfg.FlushOnClose,
		Keys:          kvstore.Keys{Prefix: cfg.StorePrefix},
	}
	ed := editor.New(store, opts, log)
	if err := ed.Load(ctx); err != nil {
		log.Error("load projects", "error", err)
		os.Exit(1)
	}

	// Initialize generation providers.
	claude := gateway.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL)
	var speech gateway.SpeechSynthesizer
	if cfg.OpenAIAPIKey != "" {
		speech = gateway.NewOpenAISpeech(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.TTSModel, cfg.TTSVoice)
	} else {
		log.Info("narration disabled, OPENAI_API_KEY not set")
	}
	gw := gateway.NewService(claude, speech,
		gateway.NewRateLimiter(cfg.RateLimitCount, cfg.RateLimitInterval),
		gateway.NewLLMStats(time.Hour),
		gateway.Config{ProModel: cfg.AnthropicModel, FastModel: cfg.AnthropicFastModel},
		log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Config{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, gw, ed, log)
	orch.Start(ctx)

	srv := api.NewServer(ed, orch, gw, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if err := ed.Close(shutdownCtx); err != nil {
			log.Error("final flush failed", "error", err)
		}
		claude.Close()
		if err := store.Close(); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	log.Info("starting coursedraft", "port", cfg.Port, "store", cfg.StoreBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (kvstore.Store, error) {
	var (
		s   kvstore.Store
		err error
	)
	switch cfg.StoreBackend {
	case config.BackendBadger:
		bc := kvstore.DefaultBadgerConfig(cfg.BadgerPath)
		bc.Logger = log.With("component", "badger")
		s, err = kvstore.OpenBadger(bc)
	case config.BackendRedis:
		s, err = kvstore.NewRedis(ctx, cfg.RedisAddr)
	case config.BackendPathstore:
		s = kvstore.NewPathstore(pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey))
	case config.BackendMemory:
		log.Warn("memory store selected, projects are lost on restart")
		s = kvstore.NewMemory()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}
	return kvstore.Instrument(cfg.StoreBackend, s), nil
}
