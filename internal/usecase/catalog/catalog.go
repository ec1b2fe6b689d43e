// Package catalog holds the handles every pipeline works against: the vector
// index, the embedding provider and the target collection name. It also owns
// the reader/writer discipline: a rebuild excludes queries and other rebuilds,
// queries run concurrently with each other.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/domain"
	domcol "github.com/kailas-cloud/recdex/internal/domain/collection"
)

// Catalog binds an index and an embedder to one collection.
type Catalog struct {
	index      db.VectorIndex
	embedder   domain.Embedder
	collection string

	mu sync.RWMutex
}

// New creates a Catalog. An empty collection name selects collection.DefaultName.
func New(index db.VectorIndex, embedder domain.Embedder, collection string) (*Catalog, error) {
	if index == nil {
		return nil, fmt.Errorf("catalog: %w: index is required", domain.ErrInvalidArgument)
	}
	if embedder == nil {
		return nil, fmt.Errorf("catalog: %w: embedder is required", domain.ErrInvalidArgument)
	}
	if collection == "" {
		collection = domcol.DefaultName
	}
	if err := domcol.ValidateName(collection); err != nil {
		return nil, fmt.Errorf("catalog: %w: %v", domain.ErrInvalidArgument, err)
	}
	return &Catalog{index: index, embedder: embedder, collection: collection}, nil
}

// Collection returns the target collection name.
func (c *Catalog) Collection() string { return c.collection }

// Embedder returns the embedding provider.
func (c *Catalog) Embedder() domain.Embedder { return c.embedder }

// Rebuild runs fn with exclusive access to the index.
func (c *Catalog) Rebuild(fn func(idx db.VectorIndex) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.index)
}

// Read runs fn with shared access to the index.
func (c *Catalog) Read(fn func(idx db.VectorIndex) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(c.index)
}

// Ensure creates the collection when it does not exist yet.
func (c *Catalog) Ensure(ctx context.Context) error {
	return c.Rebuild(func(idx db.VectorIndex) error {
		_, err := idx.CreateCollection(ctx, c.collection)
		if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("ensure collection %s: %w", c.collection, err)
		}
		return nil
	})
}

// Describe returns the collection metadata.
func (c *Catalog) Describe(ctx context.Context) (domcol.Collection, error) {
	var col domcol.Collection
	err := c.Read(func(idx db.VectorIndex) error {
		var err error
		col, err = idx.Describe(ctx, c.collection)
		return err
	})
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("describe collection %s: %w", c.collection, err)
	}
	return col, nil
}

// Exists reports whether the collection is present.
func (c *Catalog) Exists(ctx context.Context) (bool, error) {
	_, err := c.Describe(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Count returns the number of records in the collection.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	col, err := c.Describe(ctx)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}
