// Package summary turns a flat block of generated text into a
// heading/paragraph layout.
package summary

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxHeadingLen is the exclusive upper bound on heading length in characters.
const MaxHeadingLen = 60

// headingKeywords matches a keyword as a whole word. RE2's \b only knows
// ASCII word characters, so the boundaries are spelled out to treat any
// letter, digit, mark or underscore as part of a word.
var headingKeywords = regexp.MustCompile(
	`(?:^|[^\p{L}\p{N}\p{M}_])(?:key points|highlights|summary|conclusion|findings|results)(?:$|[^\p{L}\p{N}\p{M}_])`,
)

// Kind classifies a sentence or block.
type Kind int

const (
	// Paragraph is running text.
	Paragraph Kind = iota
	// Heading is a short title-like sentence.
	Heading
	// Lead is the first sentence of the document.
	Lead
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case Lead:
		return "lead"
	default:
		return "paragraph"
	}
}

// Segmenter splits text into sentences in order.
type Segmenter interface {
	Split(text string) ([]string, error)
}

// SegmenterFunc adapts a function to the Segmenter interface.
type SegmenterFunc func(text string) ([]string, error)

// Split calls f(text).
func (f SegmenterFunc) Split(text string) ([]string, error) { return f(text) }

// Block is one unit of a structured summary.
type Block struct {
	Kind Kind
	Text string
}

// Summary is the ordered block sequence produced by Structure.
// Without blocks it renders its source text unchanged.
type Summary struct {
	source string
	blocks []Block
}

// Blocks returns the structured blocks, nil when the text was left unstructured.
func (s Summary) Blocks() []Block { return s.blocks }

// Structured reports whether the text was split into blocks.
func (s Summary) Structured() bool { return s.blocks != nil }

// Render joins blocks into one string: the lead and flushed paragraphs are
// followed by a blank line, headings by a single newline, the final paragraph
// by nothing.
func (s Summary) Render() string {
	if s.blocks == nil {
		return s.source
	}
	var b strings.Builder
	for i, blk := range s.blocks {
		b.WriteString(blk.Text)
		switch {
		case blk.Kind == Heading:
			b.WriteString("\n")
		case blk.Kind == Lead, i < len(s.blocks)-1:
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// Classify labels a sentence as Heading when it is shorter than MaxHeadingLen
// characters and either ends with a colon or contains a heading keyword as a
// whole word (case-insensitive). Everything else is Paragraph.
func Classify(sentence string) Kind {
	if utf8.RuneCountInString(sentence) >= MaxHeadingLen {
		return Paragraph
	}
	if strings.HasSuffix(sentence, ":") || headingKeywords.MatchString(strings.ToLower(sentence)) {
		return Heading
	}
	return Paragraph
}

// Structure segments text and lays it out as lead, paragraphs and headings.
// Empty text, a single sentence, or a failing segmenter leave the text unstructured.
func Structure(text string, seg Segmenter) (s Summary) {
	s = Summary{source: text}
	if text == "" {
		return s
	}

	sentences, err := split(seg, text)
	if err != nil || len(sentences) <= 1 {
		return s
	}

	blocks := make([]Block, 0, len(sentences))
	blocks = append(blocks, Block{Kind: Lead, Text: sentences[0]})

	var paragraph []string
	flush := func() {
		if len(paragraph) > 0 {
			blocks = append(blocks, Block{Kind: Paragraph, Text: strings.Join(paragraph, " ")})
			paragraph = nil
		}
	}

	for _, sentence := range sentences[1:] {
		if classifySafe(sentence) == Heading {
			flush()
			blocks = append(blocks, Block{Kind: Heading, Text: sentence})
			continue
		}
		paragraph = append(paragraph, sentence)
	}
	flush()

	s.blocks = blocks
	return s
}

// Format structures text and renders it in one step.
func Format(text string, seg Segmenter) string {
	return Structure(text, seg).Render()
}

// FormatValue accepts arbitrary decoded input. Strings are structured;
// empty or zero values yield ""; other values are returned in their
// formatted string form unchanged.
func FormatValue(v any, seg Segmenter) string {
	if s, ok := v.(string); ok {
		return Format(s, seg)
	}
	if !truthy(v) {
		return ""
	}
	return fmt.Sprint(v)
}

func split(seg Segmenter, text string) (sentences []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("segmenter panic: %v", r)
		}
	}()
	return seg.Split(text)
}

func classifySafe(sentence string) (k Kind) {
	defer func() {
		if recover() != nil {
			k = Paragraph
		}
	}()
	return Classify(sentence)
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}
