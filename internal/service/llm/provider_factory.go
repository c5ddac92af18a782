package llm

import (
	"fmt"

	"bruce/internal/config"
	"bruce/internal/domain"
	domainllm "bruce/internal/domain/services/llm"
	"bruce/internal/service/llm/providers/anthropic"
	"bruce/internal/service/llm/providers/lorem"
)

// ProviderFactory creates model provider instances from configuration
type ProviderFactory struct {
	config *config.Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
	}
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "anthropic" - Claude models via Anthropic API
//   - "lorem" - Mock provider for local development (no API key required)
func (f *ProviderFactory) GetProvider(providerName string) (domainllm.Provider, error) {
	switch providerName {
	case "anthropic":
		return f.createAnthropicProvider()

	case "lorem":
		return lorem.NewProvider(0), nil

	default:
		return nil, fmt.Errorf("%w: unsupported provider: %s", domain.ErrNotConfigured, providerName)
	}
}

// Default returns the provider named by DEFAULT_PROVIDER
func (f *ProviderFactory) Default() (domainllm.Provider, error) {
	return f.GetProvider(f.config.DefaultProvider)
}

func (f *ProviderFactory) createAnthropicProvider() (domainllm.Provider, error) {
	if f.config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY environment variable not set", domain.ErrNotConfigured)
	}

	provider, err := anthropic.NewProvider(f.config.AnthropicAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}

	return provider, nil
}
