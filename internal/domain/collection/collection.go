package collection

import (
	"fmt"
	"regexp"
	"time"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DefaultName is the collection the ingestion pipeline rebuilds by default.
const DefaultName = "research_documents"

// Collection is the collection metadata value object.
// VectorDim is zero until the first upsert establishes it.
type Collection struct {
	name      string
	vectorDim int
	count     int
	createdAt int64
}

// ValidateName checks a collection name: ^[a-zA-Z0-9_-]+$, 1-64 chars.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// New validates and creates an empty Collection.
func New(name string) (Collection, error) {
	if err := ValidateName(name); err != nil {
		return Collection{}, err
	}
	return Collection{
		name:      name,
		createdAt: time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Collection without validation (index snapshot).
func Reconstruct(name string, vectorDim, count int, createdAt int64) Collection {
	return Collection{name: name, vectorDim: vectorDim, count: count, createdAt: createdAt}
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// VectorDim returns the established vector dimension, zero when not yet set.
func (c Collection) VectorDim() int { return c.vectorDim }

// Count returns the number of records.
func (c Collection) Count() int { return c.count }

// CreatedAt returns the creation timestamp (unix millis).
func (c Collection) CreatedAt() int64 { return c.createdAt }

// IsEmpty reports whether the collection holds no records.
func (c Collection) IsEmpty() bool { return c.count == 0 }
