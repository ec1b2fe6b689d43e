// Package segmenter provides sentence boundary detection for summary structuring.
package segmenter

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Punkt splits English text with the pre-trained Punkt model,
// which knows common abbreviations ("Dr.", "e.g.") and initials.
type Punkt struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunkt loads the embedded English model.
func NewPunkt() (*Punkt, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}
	return &Punkt{tokenizer: tok}, nil
}

// Split returns trimmed, non-empty sentences in order.
func (p *Punkt) Split(text string) ([]string, error) {
	if p == nil || p.tokenizer == nil {
		return nil, fmt.Errorf("punkt segmenter not initialized")
	}
	tokens := p.tokenizer.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, s := range tokens {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
