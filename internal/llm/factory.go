package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/sheetz/internal/store"
)

// NewProvider builds the configured backend. Calls pass through retry,
// then event logging, then the backend, so every attempt is logged.
// events may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		p, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		p, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		p, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		p, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		p = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if events != nil {
		p = WithLogging(p, cfg.Provider, events)
	}
	return WithRetry(p, cfg.Retry, cfg.Timeout), nil
}

// NewProviderFromEnv uses the SHEETZ_* configuration when it validates
// and otherwise the first vendor key found in the environment.
func NewProviderFromEnv(ctx context.Context, events store.EventRepo) (Provider, Config, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		found, ok := DiscoverConfig()
		if !ok {
			return nil, cfg, fmt.Errorf("no LLM configured: %w", err)
		}
		cfg = found
	}
	p, err := NewProvider(ctx, cfg, events)
	return p, cfg, err
}
