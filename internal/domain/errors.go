package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals a malformed call, e.g. mismatched batch lengths or k < 1.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDimensionMismatch signals a vector width inconsistent with the collection.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrAlreadyExists signals a duplicate collection.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound signals a missing collection.
	ErrNotFound = errors.New("not found")
	// ErrProviderFailure signals an embedding provider failure.
	ErrProviderFailure = errors.New("embedding provider failure")
	// ErrDecodeFailure signals a payload that is not a structured document.
	ErrDecodeFailure = errors.New("payload decode failure")
	// ErrGeneratorFailure signals a text generation failure.
	ErrGeneratorFailure = errors.New("text generator failure")
	// ErrEmptyText signals a request without text.
	ErrEmptyText = errors.New("no text provided")
	// ErrIncompleteIngest signals that the rebuilt collection does not hold the whole corpus.
	ErrIncompleteIngest = errors.New("incomplete ingest")
)

// IncompleteIngestError reports how many corpus documents ended up in the index.
type IncompleteIngestError struct {
	Expected int
	Indexed  int
}

func (e *IncompleteIngestError) Error() string {
	return fmt.Sprintf("%s: expected %d documents, index holds %d",
		ErrIncompleteIngest.Error(), e.Expected, e.Indexed)
}

func (e *IncompleteIngestError) Unwrap() error { return ErrIncompleteIngest }

// NewIncompleteIngest creates an incomplete ingest error.
func NewIncompleteIngest(expected, indexed int) error {
	return &IncompleteIngestError{Expected: expected, Indexed: indexed}
}
