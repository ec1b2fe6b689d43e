package recdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	collection string

	embedder         Embedder
	embeddingModel   string
	queryInstruction string
	dimensions       int
	maxAPIBatchSize  int

	generator Generator

	batchSize int
	defaultK  int
	maxK      int

	cacheAddrs    []string
	cachePassword string
	standalone    bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCollection sets the collection name. Defaults to "research_documents".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithEmbedder sets the text embedding provider.
// model names the provider model and namespaces cache keys.
func WithEmbedder(e Embedder, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.embeddingModel = model
	})
}

// WithHashingDimensions sets the width of the built-in hashing embedder.
// Ignored when WithEmbedder is used. Default: 384.
func WithHashingDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithQueryInstruction prefixes queries (not documents) before embedding.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = instruction
	})
}

// WithMaxAPIBatchSize caps texts per provider call. Default: 256.
func WithMaxAPIBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxAPIBatchSize = n
	})
}

// WithSummarizer enables Summarize through the given generator.
func WithSummarizer(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithBatchSize sets the number of documents embedded per call during ingestion.
// Default: 32.
func WithBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = size
	})
}

// WithLimits sets the default and maximum number of recommendations.
// Defaults: 5 and 100.
func WithLimits(defaultK, maxK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultK = defaultK
		c.maxK = maxK
	})
}

// WithRedisCache caches embeddings in a Redis or Valkey instance.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithStandalone disables cluster topology discovery for the cache.
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
