// Package openai implements pkg/embeddings' Embedder on any
// OpenAI-compatible embeddings endpoint.
package openai

import (
	"context"
	"fmt"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/novelforge/continuity/pkg/embeddings"
)

// DefaultEmbeddingModel is the default embedding model.
const DefaultEmbeddingModel = string(goopenai.SmallEmbedding3)

// Embedder wraps an OpenAI-compatible embeddings API.
type Embedder struct {
	client *goopenai.Client
	model  string
}

// EmbedderConfig holds configuration for the OpenAI embedder.
type EmbedderConfig struct {
	// BaseURL overrides the API endpoint; empty means api.openai.com.
	BaseURL string

	// APIKey authenticates requests. Falls back to OPENAI_API_KEY.
	APIKey string

	// Model is the embedding model to use. Defaults to
	// DefaultEmbeddingModel if empty.
	Model string
}

// NewEmbedder creates an embedder backed by the configured endpoint.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai embedder requires an API key")
	}

	clientCfg := goopenai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Embed converts text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embeddings.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", embeddings.ErrEmbedding)
	}

	return resp.Data[0].Embedding, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
