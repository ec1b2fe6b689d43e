package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/config"
	"github.com/kailas-cloud/recdex/internal/corpus"
	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/recdex/internal/db/redis"
	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/embedding/hashing"
	logpkg "github.com/kailas-cloud/recdex/internal/logger"
	"github.com/kailas-cloud/recdex/internal/metrics"
	"github.com/kailas-cloud/recdex/internal/repository/embcache"
	"github.com/kailas-cloud/recdex/internal/segmenter"
	openaiEmb "github.com/kailas-cloud/recdex/internal/transport/openai"
	"github.com/kailas-cloud/recdex/internal/usecase/catalog"
	embeddinguc "github.com/kailas-cloud/recdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/recdex/internal/usecase/ingest"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
	summaryuc "github.com/kailas-cloud/recdex/internal/usecase/summary"
)

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  db.Store // nil when the cache is disabled

	catalog   *catalog.Catalog
	ingest    *ingestuc.Service
	recommend *recommenduc.Service
	summary   *summaryuc.Service
	health    *healthuc.Service
}

// loadConfig resolves the environment and reads its config file.
func loadConfig(cmd *cobra.Command) (string, config.Config, error) {
	// Optional: a missing .env is not an error.
	_ = godotenv.Load()

	env, _ := cmd.Flags().GetString("env")
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return env, cfg, nil
}

func newApp(ctx context.Context, env string, cfg config.Config) (*app, error) {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	a := &app{env: env, cfg: cfg, logger: logger}

	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Username:   cfg.Cache.Username,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			Standalone: cfg.Cache.Standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		a.store = store
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	docEmbedder := buildEmbedder(cfg.Embedding, "", a.store, cfg.Cache.TTLHours, logger)
	queryEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, a.store, cfg.Cache.TTLHours, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	a.catalog, err = catalog.New(memory.New(), docEmbedder, cfg.Index.Collection)
	if err != nil {
		a.Close()
		return nil, err
	}

	seg, err := segmenter.NewPunkt()
	if err != nil {
		a.Close()
		return nil, err
	}

	// Pass nil interface (not typed nil pointer) when summarization is off.
	var generator domain.Generator
	if cfg.Summarizer.Enabled() {
		generator = openaiEmb.NewGenerator(&openaiEmb.Config{
			APIKey:  cfg.Summarizer.APIKey,
			BaseURL: cfg.Summarizer.BaseURL,
			Model:   cfg.Summarizer.Model,
			Timeout: time.Duration(cfg.Summarizer.TimeoutSec) * time.Second,
			Logger:  logger,
		}, openaiEmb.GeneratorConfig{
			MaxTokens: cfg.Summarizer.MaxTokens,
			MinTokens: cfg.Summarizer.MinTokens,
		})
	}

	a.ingest = ingestuc.New(a.catalog, logger).WithBatchSize(cfg.Index.BatchSize)
	a.recommend = recommenduc.New(a.catalog, logger).
		WithQueryEmbedder(queryEmbedder).
		WithLimits(cfg.Index.DefaultK, cfg.Index.MaxK)
	a.summary = summaryuc.New(generator, seg, logger).
		WithMaxInputChars(cfg.Summarizer.MaxInputChars).
		WithLengthHint(cfg.Summarizer.MinTokens, cfg.Summarizer.MaxTokens)

	var cache healthuc.CachePinger
	if a.store != nil {
		cache = a.store
	}
	a.health = healthuc.New(a.catalog, newEmbeddingHealthChecker(docEmbedder), cache)

	return a, nil
}

// Close releases the cache connection and flushes logs.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

// ingestFile rebuilds the collection from a corpus file.
func (a *app) ingestFile(ctx context.Context, path string, batchSize int) (ingestuc.Report, error) {
	docs, err := corpus.LoadFile(path)
	if err != nil {
		return ingestuc.Report{}, err
	}
	return a.ingest.Ingest(ctx, docs, batchSize)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	embCfg config.EmbeddingConfig,
	instruction string,
	store db.Store,
	ttlHours int,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (OpenAI carries transport metrics built-in)
	var base domain.Embedder
	switch embCfg.Provider {
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     embCfg.APIKey,
			BaseURL:    embCfg.BaseURL,
			Model:      embCfg.Model,
			Dimensions: embCfg.Dimensions,
			Provider:   embCfg.Provider,
			Timeout:    time.Duration(embCfg.TimeoutSec) * time.Second,
			Logger:     logger,
		})
	default:
		base = hashing.New(embCfg.Dimensions)
	}

	// Cached
	embedder := base
	if store != nil {
		embedder = embcache.New(base, store, embCfg.Model, metrics.EmbeddingCacheTotal, logger).
			WithDimensions(embCfg.Dimensions).
			WithTTL(time.Duration(ttlHours) * time.Hour)
	}

	// Instrumented (logging, chunking, error normalization)
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, embCfg.Provider, embCfg.Model, logger).
		WithMaxBatchSize(embCfg.MaxAPIBatchSize)

	// Instruction prefix is outermost so the cache key includes it
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}
