package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider builds the provider selected by cfg and wraps it with request
// logging. There is no retry layer: a failed call surfaces immediately.
func NewProvider(ctx context.Context, cfg Config, eventRepo EventRecorder, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg)
	case ProviderOpenAI, ProviderDeepSeek, ProviderOllama, ProviderLMStudio:
		base, err = NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, eventRepo, logger), nil
}
