package llmoracle

import (
	"fmt"
	"os"

	"github.com/shipaleks/eidetic/pkg/config"
)

// New builds the Oracle implementation selected by cfg.Backend, reading the
// API key from the environment variable cfg.APIKeyEnv names.
func New(cfg *config.AgentConfig) (Oracle, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("llmoracle: environment variable %s is not set", cfg.APIKeyEnv)
	}

	switch cfg.Backend {
	case config.LLMBackendAnthropic:
		return NewAnthropicOracle(apiKey, cfg.Model, cfg.MaxTokens), nil
	case config.LLMBackendOpenAI:
		return NewOpenAIOracle(apiKey, cfg.Model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("llmoracle: unsupported backend %q", cfg.Backend)
	}
}
