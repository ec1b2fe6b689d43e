// Package payload decodes stored record payloads into a tagged result.
package payload

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/recdex/internal/domain"
)

// Kind tags the outcome of Decode.
type Kind int

const (
	// KindDecoded means the payload is a structured object.
	KindDecoded Kind = iota
	// KindFallback means the payload is kept as raw text.
	KindFallback
)

func (k Kind) String() string {
	if k == KindDecoded {
		return "decoded"
	}
	return "fallback"
}

// Result is either Decoded(fields) or Fallback(raw text). Exactly one is meaningful.
type Result struct {
	kind   Kind
	fields map[string]any
	raw    string
	err    error
}

// Decode parses a payload. Only a JSON object decodes; anything else,
// including valid JSON arrays or scalars, becomes a Fallback carrying the raw text.
func Decode(raw []byte) Result {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Result{kind: KindFallback, raw: string(raw), err: fmt.Errorf("%w: %v", domain.ErrDecodeFailure, err)}
	}
	if fields == nil {
		return Result{kind: KindFallback, raw: string(raw), err: fmt.Errorf("%w: null payload", domain.ErrDecodeFailure)}
	}
	return Result{kind: KindDecoded, fields: fields}
}

// Decoded constructs a decoded result directly.
func Decoded(fields map[string]any) Result {
	return Result{kind: KindDecoded, fields: fields}
}

// Fallback constructs a fallback result directly.
func Fallback(raw string) Result {
	return Result{kind: KindFallback, raw: raw}
}

// Kind returns the result tag.
func (r Result) Kind() Kind { return r.kind }

// Fields returns the decoded object, nil for a fallback.
func (r Result) Fields() map[string]any { return r.fields }

// Raw returns the raw text of a fallback.
func (r Result) Raw() string { return r.raw }

// Err returns the decode failure of a fallback, wrapping domain.ErrDecodeFailure.
func (r Result) Err() error { return r.err }

// String returns the named field as text. ok is false when the field is
// absent or null. Non-string values are formatted.
func (r Result) String(key string) (string, bool) {
	v, found := r.fields[key]
	if !found || v == nil {
		return "", false
	}
	if s, isStr := v.(string); isStr {
		return s, true
	}
	return fmt.Sprint(v), true
}
