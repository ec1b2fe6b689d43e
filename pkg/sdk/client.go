package recdex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/corpus"
	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/recdex/internal/db/redis"
	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/document"
	"github.com/kailas-cloud/recdex/internal/domain/recommendation"
	"github.com/kailas-cloud/recdex/internal/embedding/hashing"
	"github.com/kailas-cloud/recdex/internal/repository/embcache"
	"github.com/kailas-cloud/recdex/internal/segmenter"
	"github.com/kailas-cloud/recdex/internal/usecase/catalog"
	embeddinguc "github.com/kailas-cloud/recdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/recdex/internal/usecase/ingest"
	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
	summaryuc "github.com/kailas-cloud/recdex/internal/usecase/summary"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	cacheTTL                = 30 * 24 * time.Hour
	hashingModel            = "hashing-v1"
)

// Internal interfaces, replaced by mocks in tests.
type ingestUseCase interface {
	Ingest(ctx context.Context, corpus []document.Raw, batchSize int) (ingestuc.Report, error)
}

type recommendUseCase interface {
	Recommend(ctx context.Context, text string, k int) ([]recommendation.Recommendation, error)
}

type summaryUseCase interface {
	Summarize(ctx context.Context, text string) (summaryuc.Result, error)
	Structure(v any) string
	CanGenerate() bool
}

type indexUseCase interface {
	Count(ctx context.Context) (int, error)
}

// Client is the recdex SDK entry point.
type Client struct {
	store      db.Store // nil without WithRedisCache
	collection string
	indexSvc   indexUseCase
	ingestSvc  ingestUseCase
	recSvc     recommendUseCase
	summarySvc summaryUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client with an empty collection.
// The provided context is used for the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store *dbRedis.Store
	if len(cfg.cacheAddrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.cacheAddrs,
			Password:   cfg.cachePassword,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("recdex: create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("recdex: cache not ready: %w", err)
		}
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := zap.NewNop()

	var base domain.Embedder
	provider, model, dim := "custom", cfg.embeddingModel, 0
	if cfg.embedder != nil {
		base = adaptEmbedder(cfg.embedder)
	} else {
		h := hashing.New(cfg.dimensions)
		base, provider, model, dim = h, "hashing", hashingModel, h.Dimensions()
	}

	if store != nil {
		base = embcache.New(base, store, model, nil, logger).
			WithDimensions(dim).
			WithTTL(cacheTTL)
	}
	docEmbedder := embeddinguc.NewInstrumentedEmbedder(base, provider, model, logger).
		WithMaxBatchSize(cfg.maxAPIBatchSize)

	var queryEmbedder domain.Embedder = docEmbedder
	if cfg.queryInstruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(docEmbedder, cfg.queryInstruction)
	}

	cat, err := catalog.New(memory.New(), docEmbedder, cfg.collection)
	if err != nil {
		return nil, fmt.Errorf("recdex: %w", err)
	}
	if err := cat.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("recdex: %w", err)
	}

	seg, err := segmenter.NewPunkt()
	if err != nil {
		return nil, fmt.Errorf("recdex: %w", err)
	}

	var generator domain.Generator
	if cfg.generator != nil {
		generator = cfg.generator
	}

	var cache healthuc.CachePinger
	var dbStore db.Store
	if store != nil {
		cache = store
		dbStore = store
	}

	recSvc := recommenduc.New(cat, logger).
		WithQueryEmbedder(queryEmbedder).
		WithLimits(cfg.defaultK, cfg.maxK)

	return &Client{
		store:      dbStore,
		collection: cat.Collection(),
		indexSvc:   cat,
		ingestSvc:  ingestuc.New(cat, logger).WithBatchSize(cfg.batchSize),
		recSvc:     recSvc,
		summarySvc: summaryuc.New(generator, seg, logger),
		healthSvc:  healthuc.New(cat, docEmbedder, cache),
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Collection returns the collection name.
func (c *Client) Collection() string { return c.collection }

// Ingest replaces the collection contents with docs. Document ids are
// their positions in docs.
func (c *Client) Ingest(ctx context.Context, docs []Document) (report IngestReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	raw := make([]document.Raw, len(docs))
	for i, d := range docs {
		raw[i] = document.Raw(d)
	}
	r, err := c.ingestSvc.Ingest(ctx, raw, 0)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest: %w", err)
	}
	report = reportFromDomain(r)
	c.obs.indexed(report)
	return report, nil
}

// IngestFile loads a JSON array or JSON Lines corpus and ingests it.
func (c *Client) IngestFile(ctx context.Context, path string) (report IngestReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest_file", start, err) }()

	raw, err := corpus.LoadFile(path)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest file: %w", err)
	}
	r, err := c.ingestSvc.Ingest(ctx, raw, 0)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest file: %w", err)
	}
	report = reportFromDomain(r)
	c.obs.indexed(report)
	return report, nil
}

// Recommend returns up to k documents nearest to text, best first.
// k <= 0 selects the default.
func (c *Client) Recommend(ctx context.Context, text string, k int) (recs []Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err) }()

	found, err := c.recSvc.Recommend(ctx, text, k)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	recs = make([]Recommendation, len(found))
	for i, r := range found {
		recs[i] = Recommendation{Title: r.Title, URL: r.URL, Description: r.Description}
	}
	return recs, nil
}

// Summarize generates a structured summary of text.
func (c *Client) Summarize(ctx context.Context, text string) (s Summary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("summarize", start, err) }()

	if !c.summarySvc.CanGenerate() {
		return Summary{}, ErrSummarizerDisabled
	}
	res, err := c.summarySvc.Summarize(ctx, text)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return Summary{Text: res.Summary, Raw: res.RawSummary}, nil
}

// Structure lays out already generated text as headings and paragraphs.
func (c *Client) Structure(text string) string {
	return c.summarySvc.Structure(text)
}

// Count returns the number of documents in the collection.
func (c *Client) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err) }()

	n, err = c.indexSvc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Ping checks cache connectivity. Without a cache it always succeeds.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
