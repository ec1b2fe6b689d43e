// Package ingest rebuilds a collection from a corpus: delete, create, then
// embed and upsert consecutive batches in corpus order.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/document"
	"github.com/kailas-cloud/recdex/internal/metrics"
	"github.com/kailas-cloud/recdex/internal/usecase/catalog"
)

// DefaultBatchSize is the number of documents embedded per provider call.
const DefaultBatchSize = 32

// Report summarizes one ingestion run.
type Report struct {
	Collection string        `json:"collection"`
	Documents  int           `json:"documents"`
	Indexed    int           `json:"indexed"`
	Batches    int           `json:"batches"`
	Dimensions int           `json:"dimensions"`
	Tokens     int           `json:"tokens"`
	Duration   time.Duration `json:"-"`
}

// Service runs full-rebuild ingestion.
type Service struct {
	catalog   *catalog.Catalog
	batchSize int
	logger    *zap.Logger
}

// New creates an ingestion Service.
func New(cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: cat, batchSize: DefaultBatchSize, logger: logger}
}

// WithBatchSize sets the default batch size used when Ingest gets batchSize <= 0.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Ingest replaces the collection with exactly the given corpus.
// Record ids are doc_<ordinal> regardless of batchSize. A provider error
// aborts the run and leaves a partial collection; re-running recovers.
// A final count that differs from len(corpus) returns *domain.IncompleteIngestError.
func (s *Service) Ingest(ctx context.Context, corpus []document.Raw, batchSize int) (Report, error) {
	if batchSize <= 0 {
		batchSize = s.batchSize
	}
	name := s.catalog.Collection()
	start := time.Now()

	report := Report{Collection: name, Documents: len(corpus)}
	err := s.catalog.Rebuild(func(idx db.VectorIndex) error {
		return s.rebuild(ctx, idx, corpus, batchSize, &report)
	})
	report.Duration = time.Since(start)

	metrics.IngestDuration.WithLabelValues(name).Observe(report.Duration.Seconds())
	if err != nil {
		metrics.IngestRunsTotal.WithLabelValues(name, "error").Inc()
		s.logger.Error("Ingestion failed",
			zap.String("collection", name),
			zap.Int("documents", report.Documents),
			zap.Int("batches", report.Batches),
			zap.Error(err),
		)
		return report, err
	}

	metrics.IngestRunsTotal.WithLabelValues(name, "success").Inc()
	metrics.IndexDocuments.WithLabelValues(name).Set(float64(report.Indexed))

	s.logger.Info("Ingestion completed",
		zap.String("collection", name),
		zap.Int("documents", report.Documents),
		zap.Int("indexed", report.Indexed),
		zap.Int("batches", report.Batches),
		zap.Int("dimensions", report.Dimensions),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) rebuild(
	ctx context.Context, idx db.VectorIndex, corpus []document.Raw, batchSize int, report *Report,
) error {
	name := report.Collection

	if err := idx.DeleteCollection(ctx, name); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	if _, err := idx.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	for offset := 0; offset < len(corpus); offset += batchSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch at %d: %w", offset, err)
		}
		end := min(offset+batchSize, len(corpus))

		tokens, err := s.ingestBatch(ctx, idx, name, offset, corpus[offset:end])
		if err != nil {
			return fmt.Errorf("batch at %d: %w", offset, err)
		}
		report.Batches++
		report.Tokens += tokens
		metrics.IngestBatchesTotal.WithLabelValues(name).Inc()
	}

	col, err := idx.Describe(ctx, name)
	if err != nil {
		return fmt.Errorf("describe collection %s: %w", name, err)
	}
	report.Indexed = col.Count()
	report.Dimensions = col.VectorDim()

	if report.Indexed != len(corpus) {
		return domain.NewIncompleteIngest(len(corpus), report.Indexed)
	}
	return nil
}

func (s *Service) ingestBatch(
	ctx context.Context, idx db.VectorIndex, name string, offset int, batch []document.Raw,
) (int, error) {
	texts := make([]string, len(batch))
	for i, raw := range batch {
		texts[i] = document.Text(raw)
	}

	res, err := domain.EmbedBatch(ctx, s.catalog.Embedder(), texts)
	if err != nil {
		if !errors.Is(err, domain.ErrProviderFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
		}
		return 0, fmt.Errorf("embed: %w", err)
	}

	records := make([]document.Record, len(batch))
	for i, raw := range batch {
		rec, err := document.NewRecord(offset+i, res.Embeddings[i], raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		records[i] = rec
	}

	if err := db.UpsertRecords(ctx, idx, name, records); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}

	s.logger.Debug("Batch ingested",
		zap.String("collection", name),
		zap.Int("offset", offset),
		zap.Int("size", len(batch)),
	)
	return res.TotalTokens, nil
}
