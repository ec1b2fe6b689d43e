package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/kailas-cloud/recdex/internal/db"
	"github.com/kailas-cloud/recdex/internal/domain"
)

const testCollection = "research_documents"

func newWithCollection(t *testing.T) *Index {
	t.Helper()
	x := New()
	if _, err := x.CreateCollection(context.Background(), testCollection); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return x
}

func upsert(t *testing.T, x *Index, ids []string, vectors [][]float32) {
	t.Helper()
	payloads := make([][]byte, len(ids))
	for i, id := range ids {
		payloads[i] = []byte(fmt.Sprintf(`{"title":%q}`, id))
	}
	if err := x.Upsert(context.Background(), testCollection, ids, vectors, payloads); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Collection lifecycle ---

func TestCreateCollection_AlreadyExists(t *testing.T) {
	x := newWithCollection(t)

	_, err := x.CreateCollection(context.Background(), testCollection)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpCreate {
		t.Errorf("expected db.Error with op %s, got %v", db.OpCreate, err)
	}
}

func TestCreateCollection_InvalidName(t *testing.T) {
	_, err := New().CreateCollection(context.Background(), "bad name")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDeleteCollection(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"a"}, [][]float32{{1, 0}})

	if err := x.DeleteCollection(context.Background(), testCollection); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := x.Count(context.Background(), testCollection); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := x.DeleteCollection(context.Background(), testCollection); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	// recreated collection starts empty with no dimension
	if _, err := x.CreateCollection(context.Background(), testCollection); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, err := x.Describe(context.Background(), testCollection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Count() != 0 || col.VectorDim() != 0 {
		t.Errorf("expected empty recreated collection, got count=%d dim=%d", col.Count(), col.VectorDim())
	}
}

// --- Upsert ---

func TestUpsert_EstablishesDimension(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"a", "b"}, [][]float32{{1, 0, 0}, {0, 1, 0}})

	col, err := x.Describe(context.Background(), testCollection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.VectorDim() != 3 {
		t.Errorf("VectorDim() = %d, want 3", col.VectorDim())
	}
	if col.Count() != 2 {
		t.Errorf("Count() = %d, want 2", col.Count())
	}
}

func TestUpsert_DimensionMismatchIsAtomic(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"a"}, [][]float32{{1, 0}})

	err := x.Upsert(context.Background(), testCollection,
		[]string{"b", "c"},
		[][]float32{{0, 1}, {0, 1, 0}},
		[][]byte{[]byte("b"), []byte("c")},
	)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	n, _ := x.Count(context.Background(), testCollection)
	if n != 1 {
		t.Errorf("Count() = %d, want 1: failed batch must not be partially applied", n)
	}
}

func TestUpsert_MixedWidthFirstBatch(t *testing.T) {
	x := newWithCollection(t)

	err := x.Upsert(context.Background(), testCollection,
		[]string{"a", "b"},
		[][]float32{{1, 0}, {1, 0, 0}},
		[][]byte{nil, nil},
	)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	col, _ := x.Describe(context.Background(), testCollection)
	if col.VectorDim() != 0 {
		t.Errorf("dimension should stay unset after a rejected batch, got %d", col.VectorDim())
	}
}

func TestUpsert_InvalidArguments(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		vectors  [][]float32
		payloads [][]byte
	}{
		{"fewer vectors", []string{"a", "b"}, [][]float32{{1}}, [][]byte{nil, nil}},
		{"fewer payloads", []string{"a"}, [][]float32{{1}}, nil},
		{"empty id", []string{""}, [][]float32{{1}}, [][]byte{nil}},
		{"empty vector", []string{"a"}, [][]float32{{}}, [][]byte{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newWithCollection(t)
			err := x.Upsert(context.Background(), testCollection, tt.ids, tt.vectors, tt.payloads)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestUpsert_MissingCollection(t *testing.T) {
	err := New().Upsert(context.Background(), "nope", []string{"a"}, [][]float32{{1}}, [][]byte{nil})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsert_ReplaceKeepsSlot(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"a", "b", "c"}, [][]float32{{1, 0}, {0, 1}, {1, 1}})

	err := x.Upsert(context.Background(), testCollection,
		[]string{"b"}, [][]float32{{-1, 0}}, [][]byte{[]byte("replaced")},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs, err := x.Records(context.Background(), testCollection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[1].ID != "b" || string(recs[1].Payload) != "replaced" || recs[1].Vector[0] != -1 {
		t.Errorf("unexpected replaced record: %+v", recs[1])
	}
}

func TestUpsert_DuplicateInBatchLastWins(t *testing.T) {
	x := newWithCollection(t)

	err := x.Upsert(context.Background(), testCollection,
		[]string{"a", "a"},
		[][]float32{{1, 0}, {0, 1}},
		[][]byte{[]byte("first"), []byte("second")},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recs, _ := x.Records(context.Background(), testCollection)
	if len(recs) != 1 || string(recs[0].Payload) != "second" {
		t.Errorf("expected single record with last payload, got %+v", recs)
	}
}

func TestUpsert_CopiesInput(t *testing.T) {
	x := newWithCollection(t)
	vec := []float32{1, 0}
	payload := []byte("p")
	if err := x.Upsert(context.Background(), testCollection, []string{"a"}, [][]float32{vec}, [][]byte{payload}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vec[0] = 99
	payload[0] = 'x'

	recs, _ := x.Records(context.Background(), testCollection)
	if recs[0].Vector[0] != 1 || string(recs[0].Payload) != "p" {
		t.Errorf("stored record aliased caller memory: %+v", recs[0])
	}
}

// --- Query ---

func TestQuery_IdentityFirst(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"a", "b", "c"}, [][]float32{{1, 0, 0}, {0.6, 0.8, 0}, {0, 0, 1}})

	hits, err := x.Query(context.Background(), testCollection, []float32{0.6, 0.8, 0}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID != "b" {
		t.Errorf("first hit = %s, want b", hits[0].ID)
	}
	if hits[0].Distance > 1e-6 {
		t.Errorf("identity distance = %v, want 0", hits[0].Distance)
	}
	if hits[1].ID != "a" || hits[2].ID != "c" {
		t.Errorf("unexpected order: %s, %s", hits[1].ID, hits[2].ID)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits not ascending at %d: %v < %v", i, hits[i].Distance, hits[i-1].Distance)
		}
	}
	if string(hits[0].Payload) != `{"title":"b"}` {
		t.Errorf("unexpected payload %s", hits[0].Payload)
	}
}

func TestQuery_KBound(t *testing.T) {
	x := newWithCollection(t)
	ids := make([]string, 20)
	vectors := make([][]float32, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("doc_%d", i)
		vectors[i] = []float32{float32(i + 1), 1}
	}
	upsert(t, x, ids, vectors)

	for _, k := range []int{1, 5, 20, 50} {
		hits, err := x.Query(context.Background(), testCollection, []float32{1, 1}, k)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := min(k, 20); len(hits) != want {
			t.Errorf("k=%d: got %d hits, want %d", k, len(hits), want)
		}
	}
}

func TestQuery_TiesKeepInsertionOrder(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"z", "m", "a"}, [][]float32{{2, 0}, {1, 0}, {3, 0}})

	hits, err := x.Query(context.Background(), testCollection, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{hits[0].ID, hits[1].ID, hits[2].ID}
	want := []string{"z", "m", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestQuery_EmptyCollection(t *testing.T) {
	x := newWithCollection(t)

	hits, err := x.Query(context.Background(), testCollection, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("expected empty non-nil result, got %v", hits)
	}
}

func TestQuery_Errors(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"a"}, [][]float32{{1, 0}})

	if _, err := x.Query(context.Background(), testCollection, []float32{1, 0}, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("k=0: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := x.Query(context.Background(), testCollection, []float32{1, 0, 0}, 1); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("wide query: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := x.Query(context.Background(), "missing", []float32{1, 0}, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing collection: expected ErrNotFound, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := x.Query(ctx, testCollection, []float32{1, 0}, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled ctx: expected context.Canceled, got %v", err)
	}
}

func TestQuery_ZeroVector(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"zero", "unit"}, [][]float32{{0, 0}, {1, 0}})

	hits, err := x.Query(context.Background(), testCollection, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits[0].ID != "unit" || hits[1].ID != "zero" {
		t.Errorf("unexpected order %s, %s", hits[0].ID, hits[1].ID)
	}
	if hits[1].Distance != 1 {
		t.Errorf("zero vector distance = %v, want 1", hits[1].Distance)
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"same", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineDistance(tt.a, l2norm(tt.a), tt.b, l2norm(tt.b))
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("cosineDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Concurrency ---

func TestIndex_ConcurrentReadersAndWriters(t *testing.T) {
	x := newWithCollection(t)
	upsert(t, x, []string{"seed"}, [][]float32{{1, 0}})

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				id := fmt.Sprintf("w%d_%d", w, i)
				_ = x.Upsert(context.Background(), testCollection, []string{id}, [][]float32{{float32(i), 1}}, [][]byte{nil})
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if _, err := x.Query(context.Background(), testCollection, []float32{1, 0}, 5); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	n, _ := x.Count(context.Background(), testCollection)
	if n != 201 {
		t.Errorf("Count() = %d, want 201", n)
	}
}
