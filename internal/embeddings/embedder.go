package embeddings

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by NewEmbedder
const (
	ProviderTFIDF  = "tfidf"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Embedder generates vector embeddings for text
type Embedder interface {
	// Embed generates an embedding vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, one per input, in input order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the size of the embedding vectors, or 0 if not yet known
	Dimensions() int

	// Name returns the name/model of this embedder
	Name() string
}

// Config holds configuration for creating an embedder
type Config struct {
	Provider string

	// Ollama config
	OllamaURL   string
	OllamaModel string

	// OpenAI config
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Providers lists the supported provider names, default first
func Providers() []string {
	return []string{ProviderTFIDF, ProviderOllama, ProviderOpenAI}
}

// NewEmbedder creates an embedder based on the config.
// An empty provider selects the offline TF-IDF embedder.
func NewEmbedder(cfg Config) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderTFIDF:
		return NewTFIDFEmbedder(), nil
	case ProviderOllama:
		return NewOllamaEmbedder(cfg.OllamaURL, cfg.OllamaModel)
	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (supported: %s)",
			cfg.Provider, strings.Join(Providers(), ", "))
	}
}
