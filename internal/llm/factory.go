package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a model-call adapter based on the provided configuration.
// The returned client is wrapped with a request rate limiter.
func NewClient(cfg Config) (Client, error) {
	var inner Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		inner, err = newOpenAIClient(cfg)
	case "anthropic", "":
		inner, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &rateLimitedClient{
		inner:   inner,
		limiter: newRateLimiter(cfg.RateLimit),
	}, nil
}
