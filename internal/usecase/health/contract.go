package health

import "context"

// IndexInspector reports on the served collection.
type IndexInspector interface {
	Count(ctx context.Context) (int, error)
}

// CachePinger checks embedding cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
