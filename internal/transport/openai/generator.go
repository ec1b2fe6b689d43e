package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/metrics"
)

const defaultSystemPrompt = "You summarize research documents. " +
	"Open with a one-sentence overview, then group the key findings under short headings ending with a colon."

// Generator produces summaries through the chat completions API.
type Generator struct {
	client    *openai.Client
	model     string
	maxTokens int
	minTokens int
	system    string
	logger    *zap.Logger
}

// GeneratorConfig holds summary generation limits.
type GeneratorConfig struct {
	MaxTokens    int
	MinTokens    int
	SystemPrompt string
}

// NewGenerator creates an OpenAI-compatible text generator.
func NewGenerator(cfg *Config, gen GeneratorConfig) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	system := gen.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}
	return &Generator{
		client:    newClient(cfg),
		model:     cfg.Model,
		maxTokens: gen.MaxTokens,
		minTokens: gen.MinTokens,
		system:    system,
		logger:    logger,
	}
}

// Generate implements domain.Generator. One call, no retry.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	system := g.system
	if g.minTokens > 0 {
		system += fmt.Sprintf(" Write at least %d tokens.", g.minTokens)
	}
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: g.maxTokens,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GeneratorRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", parseAPIError("generation", err, domain.ErrGeneratorFailure)
	}
	if len(resp.Choices) == 0 {
		metrics.GeneratorRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGeneratorFailure)
	}

	metrics.GeneratorRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GeneratorRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())

	g.logger.Debug("Summary generated",
		zap.String("model", g.model),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", duration),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
