package document

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TextField is the corpus field that gets embedded.
const TextField = "text"

const idPrefix = "doc_"

// Raw is one corpus entry as loaded, passed through verbatim as payload.
type Raw = map[string]any

// Record is one (id, vector, payload) triple stored in a collection.
// The payload is opaque to the index.
type Record struct {
	ID      string
	Vector  []float32
	Payload []byte
}

// ID returns the deterministic record id for a zero-based corpus ordinal.
func ID(ordinal int) string {
	return idPrefix + strconv.Itoa(ordinal)
}

// Ordinal parses an id produced by ID. ok is false for foreign ids.
func Ordinal(id string) (int, bool) {
	rest, found := strings.CutPrefix(id, idPrefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Text extracts the embeddable text of a corpus entry.
// A missing or null field yields "", non-string values are formatted.
func Text(raw Raw) string {
	v, ok := raw[TextField]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// EncodePayload serializes a corpus entry for storage.
func EncodePayload(raw Raw) ([]byte, error) {
	if raw == nil {
		raw = Raw{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// NewRecord builds the record for the corpus entry at ordinal.
func NewRecord(ordinal int, vector []float32, raw Raw) (Record, error) {
	payload, err := EncodePayload(raw)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", ID(ordinal), err)
	}
	return Record{ID: ID(ordinal), Vector: vector, Payload: payload}, nil
}
