package db

import (
	"context"
	"time"

	domcol "github.com/kailas-cloud/recdex/internal/domain/collection"
	"github.com/kailas-cloud/recdex/internal/domain/document"
)

// Store is the remote key-value facade (embedding cache backend).
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMulti returns one entry per key; missing keys yield nil.
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Hit is one nearest-neighbor match. Lower Distance means more similar.
type Hit struct {
	ID       string
	Payload  []byte
	Distance float64
}

// VectorIndex holds named collections of (id, vector, payload) records.
//
//nolint:interfacebloat // facade; consumers declare narrow sub-interfaces
type VectorIndex interface {
	CreateCollection(ctx context.Context, name string) (domcol.Collection, error)
	DeleteCollection(ctx context.Context, name string) error
	Describe(ctx context.Context, name string) (domcol.Collection, error)
	Upsert(ctx context.Context, name string, ids []string, vectors [][]float32, payloads [][]byte) error
	Query(ctx context.Context, name string, vector []float32, k int) ([]Hit, error)
	Count(ctx context.Context, name string) (int, error)
	Records(ctx context.Context, name string) ([]document.Record, error)
}

// UpsertRecords splits records into the parallel slices Upsert expects.
func UpsertRecords(ctx context.Context, idx VectorIndex, name string, records []document.Record) error {
	ids := make([]string, len(records))
	vectors := make([][]float32, len(records))
	payloads := make([][]byte, len(records))
	for i, r := range records {
		ids[i] = r.ID
		vectors[i] = r.Vector
		payloads[i] = r.Payload
	}
	return idx.Upsert(ctx, name, ids, vectors, payloads)
}
