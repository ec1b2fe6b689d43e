package recdex

import (
	"context"

	"github.com/kailas-cloud/recdex/internal/domain/document"
	"github.com/kailas-cloud/recdex/internal/domain/recommendation"
	healthuc "github.com/kailas-cloud/recdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/recdex/internal/usecase/ingest"
	summaryuc "github.com/kailas-cloud/recdex/internal/usecase/summary"
)

// --- ingestUseCase mock ---

type mockIngestUC struct {
	ingestFn func(ctx context.Context, corpus []document.Raw, batchSize int) (ingestuc.Report, error)
}

func (m *mockIngestUC) Ingest(ctx context.Context, corpus []document.Raw, batchSize int) (ingestuc.Report, error) {
	return m.ingestFn(ctx, corpus, batchSize)
}

// --- recommendUseCase mock ---

type mockRecommendUC struct {
	recommendFn func(ctx context.Context, text string, k int) ([]recommendation.Recommendation, error)
}

func (m *mockRecommendUC) Recommend(
	ctx context.Context, text string, k int,
) ([]recommendation.Recommendation, error) {
	return m.recommendFn(ctx, text, k)
}

// --- summaryUseCase mock ---

type mockSummaryUC struct {
	summarizeFn func(ctx context.Context, text string) (summaryuc.Result, error)
	structureFn func(v any) string
	canGenerate bool
}

func (m *mockSummaryUC) Summarize(ctx context.Context, text string) (summaryuc.Result, error) {
	return m.summarizeFn(ctx, text)
}

func (m *mockSummaryUC) Structure(v any) string { return m.structureFn(v) }

func (m *mockSummaryUC) CanGenerate() bool { return m.canGenerate }

// --- indexUseCase mock ---

type mockIndexUC struct {
	countFn func(ctx context.Context) (int, error)
}

func (m *mockIndexUC) Count(ctx context.Context) (int, error) { return m.countFn(ctx) }

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- embedders ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchCalls int
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	m.batchCalls++
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		r, err := m.fn(ctx, t)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = r.Embedding
	}
	return out, nil
}

// --- helpers ---

func testClient(
	ingestSvc ingestUseCase,
	recSvc recommendUseCase,
	summarySvc summaryUseCase,
	indexSvc indexUseCase,
) *Client {
	return &Client{
		collection: "research_documents",
		ingestSvc:  ingestSvc,
		recSvc:     recSvc,
		summarySvc: summarySvc,
		indexSvc:   indexSvc,
	}
}
