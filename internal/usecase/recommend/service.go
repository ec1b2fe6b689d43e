// Package recommend answers free-text queries with the nearest documents
// of the catalog's collection.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/payload"
	"github.com/kailas-cloud/recdex/internal/domain/recommendation"
	"github.com/kailas-cloud/recdex/internal/logger"
	"github.com/kailas-cloud/recdex/internal/metrics"
	"github.com/kailas-cloud/recdex/internal/usecase/catalog"
)

// Result-count limits.
const (
	DefaultK = 5
	MaxK     = 100
)

// Service runs the retrieval pipeline.
type Service struct {
	catalog  *catalog.Catalog
	embedder domain.Embedder
	defaultK int
	maxK     int
	logger   *zap.Logger
}

// New creates a retrieval Service that embeds queries with the catalog's embedder.
func New(cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:  cat,
		embedder: cat.Embedder(),
		defaultK: DefaultK,
		maxK:     MaxK,
		logger:   logger,
	}
}

// WithQueryEmbedder embeds queries with e instead of the catalog's embedder,
// e.g. one carrying a query instruction prefix.
func (s *Service) WithQueryEmbedder(e domain.Embedder) *Service {
	if e != nil {
		s.embedder = e
	}
	return s
}

// WithLimits sets the default and maximum k.
func (s *Service) WithLimits(defaultK, maxK int) *Service {
	if maxK > 0 {
		s.maxK = maxK
	}
	if defaultK > 0 {
		s.defaultK = min(defaultK, s.maxK)
	}
	return s
}

// Recommend returns up to k recommendations ordered by similarity.
// k <= 0 selects the default; k above the maximum is clamped.
// Malformed payloads yield positional fallback records, never an error.
func (s *Service) Recommend(ctx context.Context, text string, k int) ([]recommendation.Recommendation, error) {
	name := s.catalog.Collection()

	recs, err := s.recommend(ctx, name, text, s.limit(k))
	if err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	metrics.RecommendRequestsTotal.WithLabelValues(name, "success").Inc()
	return recs, nil
}

func (s *Service) recommend(
	ctx context.Context, name, text string, k int,
) ([]recommendation.Recommendation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}

	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if !errors.Is(err, domain.ErrProviderFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var hits []db.Hit
	err = s.catalog.Read(func(idx db.VectorIndex) error {
		var err error
		hits, err = idx.Query(ctx, name, res.Embedding, k)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}

	log := logger.FromContextOr(ctx, s.logger)

	out := make([]recommendation.Recommendation, 0, len(hits))
	for i, hit := range hits {
		rank := i + 1
		decoded := payload.Decode(hit.Payload)
		if decoded.Kind() == payload.KindFallback {
			metrics.RecommendFallbacksTotal.WithLabelValues(name).Inc()
			log.Warn("Payload decode failed, using fallback",
				zap.String("collection", name),
				zap.String("id", hit.ID),
				zap.Int("rank", rank),
				zap.Error(decoded.Err()),
			)
		}
		out = append(out, recommendation.FromPayload(decoded, rank))
	}
	return out, nil
}

func (s *Service) limit(k int) int {
	if k <= 0 {
		return s.defaultK
	}
	return min(k, s.maxK)
}
