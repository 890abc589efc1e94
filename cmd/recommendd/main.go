package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitegen/recommender/internal/auth"
	"github.com/sitegen/recommender/internal/catalog"
	"github.com/sitegen/recommender/internal/config"
	"github.com/sitegen/recommender/internal/embedcache"
	"github.com/sitegen/recommender/internal/embedder"
	"github.com/sitegen/recommender/internal/server"
	"github.com/sitegen/recommender/internal/service"
)

func main() {
	// Set up structured logging
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("starting template recommendation service",
		"http_port", cfg.HTTPPort,
		"environment", cfg.Environment,
		"embedding_backend", cfg.EmbeddingBackend,
		"embedding_model", cfg.EmbeddingModel,
	)

	// Initialize embedding backend
	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	slog.Info("initialized embedder", "model", emb.ModelName(), "dimension", emb.Dimension())

	// Initialize embedding cache persistence
	cacheStore, closeStore, err := newCacheStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}
	slog.Info("initialized embedding cache", "backend", cfg.CacheBackend)

	// Initialize catalog, store and service
	cat := catalog.New(cfg.TemplatesPath, cfg.IndustryMappingsPath, slog.Default())
	store := embedcache.New(emb, cacheStore, slog.Default())
	svc := service.New(cat, emb, store, cfg.TopK, slog.Default())

	// Warm up before accepting traffic: every template embedding is computed
	// and persisted, so no request observes the warming state.
	slog.Info("warming up recommendation service")
	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize recommendation service: %w", err)
	}

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
		jwtCfg.Expiry = cfg.JWTExpiry
		jwtManager = auth.NewJWTManager(jwtCfg)
	}

	httpServer := server.NewHTTPServer(server.HTTPServerConfig{
		Port:   cfg.HTTPPort,
		Logger: slog.Default(),
		APIKey: cfg.APIKey,
		JWT:    jwtManager,
	}, svc)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "port", cfg.HTTPPort)
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown HTTP server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// newEmbedder selects the embedding backend by configuration. One backend is
// loaded per process; switching requires a restart.
func newEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	switch cfg.EmbeddingBackend {
	case "ollama":
		return embedder.NewOllamaEmbedder(embedder.OllamaConfig{
			BaseURL:   cfg.OllamaURL,
			Model:     cfg.EmbeddingModel,
			Dimension: cfg.EmbeddingDimension,
			Retry: embedder.RetryPolicy{
				MaxAttempts: cfg.EmbedRetryAttempts,
				BaseDelay:   cfg.EmbedRetryBaseDelay,
				Multiplier:  2.0,
			},
		}), nil
	default:
		return nil, fmt.Errorf("unsupported embedding backend: %s", cfg.EmbeddingBackend)
	}
}

// newCacheStore selects the embedding cache persistence backend.
func newCacheStore(ctx context.Context, cfg *config.Config) (embedcache.CacheStore, func(), error) {
	switch cfg.CacheBackend {
	case "file":
		return embedcache.NewFileStore(cfg.EmbeddingsPath), nil, nil
	case "postgres":
		store, err := embedcache.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return store, store.Close, nil
	case "qdrant":
		store, err := embedcache.NewQdrantStore(ctx, cfg.QdrantGRPCURL, "template_embeddings")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported embedding cache backend: %s", cfg.CacheBackend)
	}
}
