package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/domain"
	domsum "github.com/kailas-cloud/recdex/internal/domain/summary"
)

// --- Mocks ---

type mockGenerator struct {
	prompts    []string
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.generateFn(ctx, prompt)
}

// dotSegmenter splits after every ". " and ": ".
var dotSegmenter = domsum.SegmenterFunc(func(text string) ([]string, error) {
	marked := strings.NewReplacer(". ", ".\x00", ": ", ":\x00").Replace(text)
	parts := strings.Split(marked, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
})

// --- Tests ---

func TestSummarize_StructuresGeneratorOutput(t *testing.T) {
	gen := &mockGenerator{generateFn: func(context.Context, string) (string, error) {
		return "  Overview. Key Findings: Sales grew. Revenue increased.  ", nil
	}}
	svc := New(gen, dotSegmenter, zap.NewNop())

	res, err := svc.Summarize(context.Background(), "long report text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RawSummary != "Overview. Key Findings: Sales grew. Revenue increased." {
		t.Errorf("unexpected raw summary %q", res.RawSummary)
	}
	want := "Overview.\n\nKey Findings:\nSales grew. Revenue increased."
	if res.Summary != want {
		t.Errorf("summary = %q, want %q", res.Summary, want)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "long report text") {
		t.Errorf("expected one prompt carrying the input, got %v", gen.prompts)
	}
	if !strings.Contains(gen.prompts[0], "between 30 and 150 words") {
		t.Errorf("expected default length hint in prompt")
	}
}

func TestSummarize_TruncatesInput(t *testing.T) {
	gen := &mockGenerator{generateFn: func(context.Context, string) (string, error) { return "ok", nil }}
	svc := New(gen, dotSegmenter, zap.NewNop()).WithMaxInputChars(10)

	input := strings.Repeat("é", 10) + "TAIL"
	if _, err := svc.Summarize(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gen.prompts[0], "TAIL") {
		t.Error("expected input truncated before the tail")
	}
	if !strings.Contains(gen.prompts[0], strings.Repeat("é", 10)) {
		t.Error("expected the first 10 characters kept")
	}
}

func TestSummarize_EmptyText(t *testing.T) {
	gen := &mockGenerator{}
	svc := New(gen, dotSegmenter, zap.NewNop())

	_, err := svc.Summarize(context.Background(), " ")
	if !errors.Is(err, domain.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Error("generator should not be called")
	}
}

func TestSummarize_GeneratorFailure(t *testing.T) {
	upstream := errors.New("connection refused")
	gen := &mockGenerator{generateFn: func(context.Context, string) (string, error) { return "", upstream }}
	svc := New(gen, dotSegmenter, zap.NewNop())

	_, err := svc.Summarize(context.Background(), "text")
	if !errors.Is(err, domain.ErrGeneratorFailure) || !errors.Is(err, upstream) {
		t.Errorf("expected generator failure wrapping upstream, got %v", err)
	}
}

func TestSummarize_NoGenerator(t *testing.T) {
	svc := New(nil, dotSegmenter, zap.NewNop())
	if _, err := svc.Summarize(context.Background(), "text"); !errors.Is(err, domain.ErrGeneratorFailure) {
		t.Errorf("expected ErrGeneratorFailure, got %v", err)
	}
}

func TestStructure(t *testing.T) {
	svc := New(nil, dotSegmenter, zap.NewNop())

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"empty", "", ""},
		{"single sentence", "Hello world.", "Hello world."},
		{"structured", "Intro. Results: It works.", "Intro.\n\nResults:\nIt works."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Structure(tt.in); got != tt.want {
				t.Errorf("Structure(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClip(t *testing.T) {
	if got := clip("abc", 5); got != "abc" {
		t.Errorf("clip short = %q", got)
	}
	if got := clip("abcdef", 3); got != "abc" {
		t.Errorf("clip long = %q", got)
	}
}
