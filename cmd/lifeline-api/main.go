package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PabloGalante/lifeline/internal/adapters/classifier"
	httpadapter "github.com/PabloGalante/lifeline/internal/adapters/http"
	"github.com/PabloGalante/lifeline/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/lifeline/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/lifeline/internal/adapters/storage/memory"
	redisstore "github.com/PabloGalante/lifeline/internal/adapters/storage/redis"
	"github.com/PabloGalante/lifeline/internal/app/chat"
	"github.com/PabloGalante/lifeline/internal/config"
	"github.com/PabloGalante/lifeline/internal/domain"
	"github.com/PabloGalante/lifeline/internal/observability"
)

func main() {
	if err := run(); err != nil {
		observability.Logger().Error("lifeline api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	observability.Init(os.Stdout, cfg.Debug)
	log := observability.WithFields("component", "lifeline-api")

	// Risk model
	scorer, closeScorer, err := classifier.Load(cfg.TokenizerPath, cfg.ModelPath, cfg.ScorerAddr)
	if err != nil {
		return err
	}
	defer closeScorer()

	// LLM
	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info("using LLM", "provider", cfg.Provider, "model", cfg.ModelName)

	// Storage: none, memory or Firestore
	opts := chat.Options{
		GenerateTimeout:          cfg.GenerateTimeout,
		MaxConcurrentGenerations: cfg.MaxConcurrentGenerations,
	}
	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info("using Firestore assessment store", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return err
		}
		defer fsStore.Close()
		opts.Store = fsStore
	case config.StorageRedis:
		log.Info("using Redis assessment store")
		rStore, err := redisstore.NewStore(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rStore.Close()
		opts.Store = rStore
	case config.StorageMemory:
		log.Info("using in-memory assessment store")
		opts.Store = memstore.NewAssessmentStore(memstore.DefaultCapacity)
	default:
		log.Info("assessment recording disabled")
	}

	svc := chat.NewService(scorer, llmClient, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(svc),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.GenerateTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("lifeline api listening", "addr", srv.Addr, "debug", cfg.Debug)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLLMClient(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIClient(cfg)
	case config.ProviderMock:
		return llm.NewMockLLM(), nil
	default:
		return llm.NewGeminiClient(ctx, cfg)
	}
}
