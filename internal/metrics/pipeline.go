package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion, retrieval and summarization metrics.
var (
	IndexDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Records held by a collection after the last rebuild",
		},
		[]string{"collection"},
	)

	IngestRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Ingestion runs by outcome",
		},
		[]string{"collection", "status"},
	)

	IngestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Full rebuild duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"collection"},
	)

	IngestBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_batches_total",
			Help:      "Batches upserted during ingestion",
		},
		[]string{"collection"},
	)

	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_requests_total",
			Help:      "Recommendation queries by outcome",
		},
		[]string{"collection", "status"},
	)

	RecommendFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_payload_fallbacks_total",
			Help:      "Results whose payload could not be decoded",
		},
		[]string{"collection"},
	)

	GeneratorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_requests_total",
			Help:      "Text generation calls by outcome",
		},
		[]string{"model", "status"},
	)

	GeneratorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generator_request_duration_seconds",
			Help:      "Text generation call duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers ingestion, retrieval and generator metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexDocuments)
	prometheus.MustRegister(IngestRunsTotal)
	prometheus.MustRegister(IngestDuration)
	prometheus.MustRegister(IngestBatchesTotal)
	prometheus.MustRegister(RecommendRequestsTotal)
	prometheus.MustRegister(RecommendFallbacksTotal)
	prometheus.MustRegister(GeneratorRequestsTotal)
	prometheus.MustRegister(GeneratorRequestDuration)
	pipelineMetricsRegistered = true
}
