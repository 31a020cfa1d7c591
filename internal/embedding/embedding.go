package embedding

import (
	"context"
	"errors"
	"fmt"

	"scholarag/internal/config"
)

// ErrUnavailable marks embedding-provider failures. Ingestion and query
// paths surface these to the caller, who can retry; they are the only
// per-request errors allowed to cross the core boundary.
var ErrUnavailable = errors.New("embedding unavailable")

// Embedding is the interface every embedding provider implements. Vectors
// from one provider/model pair have a fixed dimensionality.
type Embedding interface {
	// Embed generates the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for a batch of texts, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// New constructs the embedding provider selected by the config.
func New(cfg config.ProviderConfig) (Embedding, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaModel(cfg.Model, cfg.BaseURL)
	case "openai":
		return NewOpenAIModel(cfg.APIKey, cfg.Model)
	case "gemini":
		return NewGeminiModel(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
