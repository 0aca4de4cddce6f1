// Package llm provides model-call adapters for the decision engine.
//
// Adapters are deliberately narrow: text in, text out. Prompt construction
// and response parsing belong to the engine package, so providers can be
// swapped without touching decision logic.
package llm

import (
	"context"
	"time"
)

// Client is the model-call adapter contract.
type Client interface {
	// Generate sends a prompt and returns the raw model response text.
	Generate(ctx context.Context, prompt string) (string, error)
	// Provider identifies the backing provider for observability.
	Provider() string
}

// Config holds provider configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultConfig returns sensible provider defaults.
func DefaultConfig() Config {
	return Config{
		Provider:    "anthropic",
		Temperature: 0.2,
		MaxTokens:   400,
		RateLimit:   60,
		Timeout:     30 * time.Second,
	}
}
