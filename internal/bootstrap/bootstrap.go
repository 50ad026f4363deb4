// Package bootstrap wires the search engine together: store, caches,
// provider, event bus and the orchestrator itself.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/panjf2000/ants/v2"

	"github.com/kitaplik/reading-assistant/internal/config"
	"github.com/kitaplik/reading-assistant/internal/core/ports"
	"github.com/kitaplik/reading-assistant/internal/core/usecase"
	"github.com/kitaplik/reading-assistant/internal/infrastructure/cache"
	"github.com/kitaplik/reading-assistant/internal/infrastructure/llm/ollama"
	natsq "github.com/kitaplik/reading-assistant/internal/infrastructure/queue/nats"
	"github.com/kitaplik/reading-assistant/internal/infrastructure/resilience"
	"github.com/kitaplik/reading-assistant/internal/infrastructure/store/postgres"
	"github.com/kitaplik/reading-assistant/internal/observability/metrics"
)

type App struct {
	Config config.Config

	SearchUC *usecase.SearchUseCase
	Cache    ports.ResultCache
	Bus      *natsq.Bus
	Metrics  *metrics.SearchMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if !cfg.SchemaBootstrapDisabled {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	layered := cache.NewLayered(
		cache.NewLRU(cfg.L1CacheCapacity, cfg.L1CacheTTL()),
		cache.NewRedis(redisClient, logger),
	)

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	bus, err := natsq.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsq.Options{
		ResilienceExecutor: executor,
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init event bus: %w", err)
	}

	provider := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)

	pool, err := ants.NewPool(cfg.RetrievalPoolSize)
	if err != nil {
		bus.Close()
		_ = db.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init retrieval pool: %w", err)
	}

	searchMetrics := metrics.NewSearchMetrics("reading-assistant-search")

	expander := usecase.NewQueryExpander(provider, layered, usecase.ExpanderOptions{
		Version: cfg.CacheVersion,
		TTL:     cfg.ExpansionTTL(),
		Timeout: cfg.ExpansionTimeout(),
	}, logger)
	reranker := usecase.NewReranker(provider, cfg.RerankTimeout(), logger)

	strategies := []ports.RetrievalStrategy{
		postgres.NewExactStrategy(db, logger),
		postgres.NewLemmaStrategy(db, logger),
		postgres.NewSemanticStrategy(db, provider, logger),
	}

	searchUC := usecase.NewSearchUseCase(
		strategies,
		layered,
		expander,
		reranker,
		pool,
		searchMetrics,
		usecase.SearchConfig{
			CacheVersion:    cfg.CacheVersion,
			CacheTTL:        cfg.CacheTTL(),
			StrategyTimeout: cfg.StrategyTimeout(),
			DefaultLimit:    cfg.SearchDefaultLimit,
			MaxExpansions:   cfg.MaxQueryExpansions,
			SemanticTailCap: cfg.SemanticTailCap,
			RerankTopN:      cfg.RerankTopN,
		},
		logger,
	)

	return &App{
		Config:   cfg,
		SearchUC: searchUC,
		Cache:    layered,
		Bus:      bus,
		Metrics:  searchMetrics,

		closeFn: func() {
			bus.Close()
			pool.Release()
			_ = redisClient.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
