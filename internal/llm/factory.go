package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewProvider builds the configured backend wrapped as
// retry → logging → backend.
func NewProvider(ctx context.Context, cfg Config, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropic(cfg)
	case "openai", "openrouter":
		base, err = NewOpenAI(cfg.Provider, cfg)
	case "gemini":
		base, err = NewGemini(ctx, cfg)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}
	return WithRetry(WithLogging(base, logger), cfg.Retry, cfg.Timeout), nil
}
