// Package summary produces structured summaries: the external generator
// writes the text, the structuring algorithm lays it out.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/domain"
	domsum "github.com/kailas-cloud/recdex/internal/domain/summary"
)

// Generation defaults.
const (
	DefaultMaxInputChars = 1024
	DefaultMinWords      = 30
	DefaultMaxWords      = 150
)

// Result carries the laid-out summary and the generator's raw output.
type Result struct {
	Summary    string `json:"summary"`
	RawSummary string `json:"raw_summary"`
}

// Service summarizes text through a Generator.
type Service struct {
	generator     domain.Generator
	segmenter     domsum.Segmenter
	maxInputChars int
	minWords      int
	maxWords      int
	logger        *zap.Logger
}

// New creates a Service. generator may be nil when only Structure is used.
func New(generator domain.Generator, segmenter domsum.Segmenter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		generator:     generator,
		segmenter:     segmenter,
		maxInputChars: DefaultMaxInputChars,
		minWords:      DefaultMinWords,
		maxWords:      DefaultMaxWords,
		logger:        logger,
	}
}

// WithMaxInputChars caps the characters of input forwarded to the generator.
func (s *Service) WithMaxInputChars(n int) *Service {
	if n > 0 {
		s.maxInputChars = n
	}
	return s
}

// WithLengthHint sets the word range requested from the generator.
func (s *Service) WithLengthHint(minWords, maxWords int) *Service {
	if minWords > 0 {
		s.minWords = minWords
	}
	if maxWords > 0 {
		s.maxWords = maxWords
	}
	return s
}

// CanGenerate reports whether a generator is configured.
func (s *Service) CanGenerate() bool { return s.generator != nil }

// Summarize generates a summary of text and structures it into
// heading/paragraph layout. The generator is called once; its errors
// surface as domain.ErrGeneratorFailure.
func (s *Service) Summarize(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, domain.ErrEmptyText
	}
	if s.generator == nil {
		return Result{}, fmt.Errorf("summarize: %w: no generator configured", domain.ErrGeneratorFailure)
	}

	input := clip(text, s.maxInputChars)
	start := time.Now()

	raw, err := s.generator.Generate(ctx, s.prompt(input))
	if err != nil {
		if !errors.Is(err, domain.ErrGeneratorFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneratorFailure, err)
		}
		return Result{}, fmt.Errorf("summarize: %w", err)
	}
	raw = strings.TrimSpace(raw)

	s.logger.Debug("Summary generated",
		zap.Int("input_chars", utf8.RuneCountInString(input)),
		zap.Int("output_chars", utf8.RuneCountInString(raw)),
		zap.Duration("duration", time.Since(start)),
	)

	return Result{Summary: domsum.Format(raw, s.segmenter), RawSummary: raw}, nil
}

// Structure lays out already generated text. Any value is accepted:
// empty or nil yields "", non-strings are formatted first.
func (s *Service) Structure(v any) string {
	return domsum.FormatValue(v, s.segmenter)
}

func (s *Service) prompt(text string) string {
	return fmt.Sprintf(`Please provide a concise summary of the following text. Aim for a length between %d and %d words.

Structure your summary with:
1. A clear main heading or overview sentence at the start
2. Use subheadings for different aspects or topics
3. Keep descriptions clear and concise
4. End with a brief conclusion if appropriate

Text:
"""
%s
"""

Summary:`, s.minWords, s.maxWords, text)
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
