package llm

import (
	"context"
	"time"

	"dinner-planner/internal/config"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// Meta holds operational metadata for one generation call.
type Meta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// NewTextGenerator picks the configured provider, preferring Groq over
// Gemini. It returns nil when neither key is set.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch {
	case cfg.GroqAPIKey != "":
		return NewGroqClient(cfg), nil
	case cfg.GeminiAPIKey != "":
		gemini, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
	return nil, nil
}
