package llm

import (
	"fmt"
	"log/slog"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"

	"draftforge/internal/capabilities"
	"draftforge/internal/config"
	llmSvc "draftforge/internal/domain/services/llm"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultLoremModel     = "lorem-fast"
	defaultMaxTokens      = 4096
)

// SetupOrchestrator wires a provider, its model limits, and the orchestrator.
// With an Anthropic key configured the real provider is used; otherwise the
// keyless lorem provider keeps the full surface working locally.
func SetupOrchestrator(cfg *config.Config, registry *capabilities.Registry, logger *slog.Logger) (llmSvc.Orchestrator, error) {
	providerName := cfg.DefaultProvider
	if providerName == "" {
		if cfg.AnthropicAPIKey != "" {
			providerName = "anthropic"
		} else {
			providerName = "lorem"
		}
	}

	provider, model, err := buildProvider(cfg, providerName)
	if err != nil {
		return nil, err
	}

	maxTokens := defaultMaxTokens
	maxContextChars := config.MaxSuggestContextChars
	if caps, err := registry.GetModelCapabilities(providerName, model); err != nil {
		logger.Warn("model not in capability registry, using default limits",
			"provider", providerName,
			"model", model,
		)
	} else {
		if caps.MaxOutput > 0 {
			maxTokens = caps.MaxOutput
		}
		// Rough 4 chars per token; never exceed the configured ceiling.
		if chars := caps.ContextWindow * 4; chars > 0 && chars < maxContextChars {
			maxContextChars = chars
		}
	}

	logger.Info("llm orchestrator configured",
		"provider", providerName,
		"model", model,
		"max_tokens", maxTokens,
	)

	generator := NewProviderGenerator(provider, model, maxTokens)
	return NewOrchestrator(generator, maxContextChars, logger), nil
}

func buildProvider(cfg *config.Config, providerName string) (llmprovider.Provider, string, error) {
	switch providerName {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		provider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create Anthropic provider: %w", err)
		}
		model := cfg.DefaultModel
		if model == "" {
			model = defaultAnthropicModel
		}
		return provider, model, nil

	case "lorem":
		model := cfg.DefaultModel
		if model == "" {
			model = defaultLoremModel
		}
		return lorem.NewProvider(), model, nil

	default:
		return nil, "", fmt.Errorf("unsupported provider: %s", providerName)
	}
}
