package llm

import (
	"context"
	"fmt"

	"scholarag/internal/config"
)

// Generator is the narrow generation interface the answer engine consumes.
// Failures propagate as plain errors; the engine converts them into
// low-confidence answers rather than letting them escape.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New constructs the generation provider selected by the config.
func New(cfg config.ProviderConfig) (Generator, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL)
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.Model)
	case "gemini":
		return NewGemini(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
