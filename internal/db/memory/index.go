// Package memory is an in-process vector index with exact (brute-force)
// cosine nearest-neighbor search.
package memory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/domain"
	domcol "github.com/kailas-cloud/recdex/internal/domain/collection"
	"github.com/kailas-cloud/recdex/internal/domain/document"
)

// Compile-time check: Index implements db.VectorIndex.
var _ db.VectorIndex = (*Index)(nil)

// Index stores collections in memory. Safe for concurrent use; each
// operation is atomic on its own. Multi-step sequences (rebuilds) need
// external coordination.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	meta domcol.Collection
	dim  int

	// Parallel slices in insertion order; pos maps id -> slot.
	ids      []string
	vectors  [][]float32
	norms    []float64
	payloads [][]byte
	pos      map[string]int
}

// New creates an empty index.
func New() *Index {
	return &Index{collections: make(map[string]*collection)}
}

// CreateCollection creates an empty collection. Fails with domain.ErrAlreadyExists
// while a collection of that name is present.
func (x *Index) CreateCollection(ctx context.Context, name string) (domcol.Collection, error) {
	if err := ctx.Err(); err != nil {
		return domcol.Collection{}, &db.Error{Op: db.OpCreate, Err: err}
	}
	meta, err := domcol.New(name)
	if err != nil {
		return domcol.Collection{}, &db.Error{Op: db.OpCreate, Err: fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.collections[name]; ok {
		return domcol.Collection{}, &db.Error{Op: db.OpCreate, Err: fmt.Errorf("collection %q: %w", name, domain.ErrAlreadyExists)}
	}
	x.collections[name] = &collection{meta: meta, pos: make(map[string]int)}
	return meta, nil
}

// DeleteCollection drops a collection and its records. Returns domain.ErrNotFound
// when absent; callers doing cleanup treat that as success.
func (x *Index) DeleteCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.collections[name]; !ok {
		return &db.Error{Op: db.OpDelete, Err: fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)}
	}
	delete(x.collections, name)
	return nil
}

// Describe returns collection metadata with the current count and dimension.
func (x *Index) Describe(ctx context.Context, name string) (domcol.Collection, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	c, err := x.get(ctx, db.OpCount, name)
	if err != nil {
		return domcol.Collection{}, err
	}
	return domcol.Reconstruct(name, c.dim, len(c.ids), c.meta.CreatedAt()), nil
}

// Count returns the number of records in a collection.
func (x *Index) Count(ctx context.Context, name string) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	c, err := x.get(ctx, db.OpCount, name)
	if err != nil {
		return 0, err
	}
	return len(c.ids), nil
}

// Upsert inserts or replaces records by id. The batch is validated in full
// before any record is written, so it commits entirely or not at all.
// The first non-empty upsert establishes the collection's dimension.
// A replaced record keeps its original insertion slot; within one batch
// the last occurrence of an id wins.
func (x *Index) Upsert(ctx context.Context, name string, ids []string, vectors [][]float32, payloads [][]byte) error {
	if len(ids) != len(vectors) || len(ids) != len(payloads) {
		return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf(
			"%w: %d ids, %d vectors, %d payloads", domain.ErrInvalidArgument, len(ids), len(vectors), len(payloads),
		)}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	c, err := x.get(ctx, db.OpUpsert, name)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	dim := c.dim
	if dim == 0 {
		dim = len(vectors[0])
	}
	for i := range ids {
		if ids[i] == "" {
			return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("%w: empty id at position %d", domain.ErrInvalidArgument, i)}
		}
		if len(vectors[i]) == 0 {
			return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("%w: empty vector for %q", domain.ErrInvalidArgument, ids[i])}
		}
		if len(vectors[i]) != dim {
			return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf(
				"%w: %q has %d dimensions, collection has %d", domain.ErrDimensionMismatch, ids[i], len(vectors[i]), dim,
			)}
		}
	}

	c.dim = dim
	for i, id := range ids {
		vec := slices.Clone(vectors[i])
		norm := l2norm(vec)
		payload := slices.Clone(payloads[i])

		if p, ok := c.pos[id]; ok {
			c.vectors[p] = vec
			c.norms[p] = norm
			c.payloads[p] = payload
			continue
		}
		c.pos[id] = len(c.ids)
		c.ids = append(c.ids, id)
		c.vectors = append(c.vectors, vec)
		c.norms = append(c.norms, norm)
		c.payloads = append(c.payloads, payload)
	}
	return nil
}

// Query returns up to k records nearest to vector by cosine distance
// (1 - cosine similarity), ascending. Ties keep insertion order.
// An empty collection yields an empty result.
func (x *Index) Query(ctx context.Context, name string, vector []float32, k int) ([]db.Hit, error) {
	if k < 1 {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrInvalidArgument, k)}
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	c, err := x.get(ctx, db.OpQuery, name)
	if err != nil {
		return nil, err
	}
	if len(c.ids) == 0 {
		return []db.Hit{}, nil
	}
	if len(vector) != c.dim {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf(
			"%w: query has %d dimensions, collection has %d", domain.ErrDimensionMismatch, len(vector), c.dim,
		)}
	}

	qnorm := l2norm(vector)
	type scored struct {
		slot int
		dist float64
	}
	all := make([]scored, len(c.ids))
	for i := range c.ids {
		all[i] = scored{slot: i, dist: cosineDistance(vector, qnorm, c.vectors[i], c.norms[i])}
	}
	slices.SortStableFunc(all, func(a, b scored) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		default:
			return 0
		}
	})

	n := min(k, len(all))
	hits := make([]db.Hit, n)
	for i := range n {
		s := all[i]
		hits[i] = db.Hit{
			ID:       c.ids[s.slot],
			Payload:  slices.Clone(c.payloads[s.slot]),
			Distance: s.dist,
		}
	}
	return hits, nil
}

// Records returns copies of all records in insertion order.
func (x *Index) Records(ctx context.Context, name string) ([]document.Record, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	c, err := x.get(ctx, db.OpScan, name)
	if err != nil {
		return nil, err
	}
	out := make([]document.Record, len(c.ids))
	for i, id := range c.ids {
		out[i] = document.Record{
			ID:      id,
			Vector:  slices.Clone(c.vectors[i]),
			Payload: slices.Clone(c.payloads[i]),
		}
	}
	return out, nil
}

// get looks up a collection; the caller holds the lock.
func (x *Index) get(ctx context.Context, op, name string) (*collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	c, ok := x.collections[name]
	if !ok {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)}
	}
	return c, nil
}

func l2norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// cosineDistance is clamped to [0, 2]; zero vectors are at distance 1 from everything.
func cosineDistance(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	d := 1 - dot/(anorm*bnorm)
	return math.Max(0, math.Min(2, d))
}
