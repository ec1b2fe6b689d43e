package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/db/memory"
	"github.com/kailas-cloud/recdex/internal/domain"
	domcol "github.com/kailas-cloud/recdex/internal/domain/collection"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		index    db.VectorIndex
		embedder domain.Embedder
		coll     string
	}{
		{"nil index", nil, stubEmbedder{}, "docs"},
		{"nil embedder", memory.New(), nil, "docs"},
		{"bad name", memory.New(), stubEmbedder{}, "bad name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.index, tt.embedder, tt.coll)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestNew_DefaultCollection(t *testing.T) {
	c, err := New(memory.New(), stubEmbedder{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Collection() != domcol.DefaultName {
		t.Errorf("expected %q, got %q", domcol.DefaultName, c.Collection())
	}
}

func TestEnsure_Idempotent(t *testing.T) {
	ctx := context.Background()
	c, err := New(memory.New(), stubEmbedder{}, "docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, err := c.Exists(ctx)
	if err != nil || exists {
		t.Fatalf("expected absent collection, got exists=%v err=%v", exists, err)
	}

	if err := c.Ensure(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Ensure(ctx); err != nil {
		t.Fatalf("second ensure should be a no-op, got %v", err)
	}

	exists, err = c.Exists(ctx)
	if err != nil || !exists {
		t.Fatalf("expected collection present, got exists=%v err=%v", exists, err)
	}
	n, err := c.Count(ctx)
	if err != nil || n != 0 {
		t.Errorf("expected empty collection, got %d (%v)", n, err)
	}
}

func TestDescribe_NotFound(t *testing.T) {
	c, _ := New(memory.New(), stubEmbedder{}, "docs")
	_, err := c.Describe(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRebuild_ExcludesReaders(t *testing.T) {
	c, _ := New(memory.New(), stubEmbedder{}, "docs")

	entered := make(chan struct{})
	release := make(chan struct{})
	readDone := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Rebuild(func(db.VectorIndex) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	go func() {
		_ = c.Read(func(db.VectorIndex) error { return nil })
		close(readDone)
	}()

	select {
	case <-readDone:
		t.Fatal("read ran while a rebuild held the catalog")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	wg.Wait()

	select {
	case <-readDone:
	case <-time.After(time.Second):
		t.Fatal("read did not run after the rebuild finished")
	}
}

func TestRead_Concurrent(t *testing.T) {
	c, _ := New(memory.New(), stubEmbedder{}, "docs")

	inside := make(chan struct{}, 2)
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Read(func(db.VectorIndex) error {
				inside <- struct{}{}
				<-release
				return nil
			})
		}()
	}

	for range 2 {
		select {
		case <-inside:
		case <-time.After(time.Second):
			t.Fatal("readers did not overlap")
		}
	}
	close(release)
	wg.Wait()
}
