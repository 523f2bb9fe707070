// Package llm provides text-generation providers for the optional news
// narrative feature. Narratives are informational only; scores and consensus
// never depend on LLM output.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/interfaces"
)

// NewProvider creates the configured LLM provider. Selection order: an
// explicit default_provider wins; otherwise the provider is detected from
// whichever model/key pair is configured.
func NewProvider(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.LLMProvider, error) {
	provider := cfg.LLM.DefaultProvider
	if provider == "" {
		provider = detectProvider(cfg)
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing LLM provider")

	switch provider {
	case common.LLMProviderGemini:
		return NewGeminiProvider(ctx, &cfg.Gemini, logger)
	case common.LLMProviderClaude:
		return NewClaudeProvider(&cfg.Claude, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// detectProvider infers the provider from configured model names and keys.
func detectProvider(cfg *common.Config) common.LLMProvider {
	if strings.HasPrefix(cfg.Claude.Model, "claude") && cfg.Claude.APIKey != "" {
		return common.LLMProviderClaude
	}
	return common.LLMProviderGemini
}
