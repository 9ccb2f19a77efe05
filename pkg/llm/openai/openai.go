// Package openai implements pkg/llm's Inferencer on any
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"context"
	"fmt"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/novelforge/continuity/pkg/llm"
)

// DefaultModel is the default chat model.
const DefaultModel = goopenai.GPT4oMini

// Inferencer wraps an OpenAI-compatible chat completions API.
type Inferencer struct {
	client *goopenai.Client
	model  string
}

// InferencerConfig holds configuration for the OpenAI inferencer.
type InferencerConfig struct {
	// BaseURL overrides the API endpoint; empty means api.openai.com.
	BaseURL string

	// APIKey authenticates requests. Falls back to OPENAI_API_KEY.
	APIKey string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string
}

// NewInferencer creates an inferencer backed by the configured endpoint.
func NewInferencer(cfg InferencerConfig) (*Inferencer, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai inferencer requires an API key")
	}

	clientCfg := goopenai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Inferencer{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Infer sends systemContext and prompt as chat messages and returns the
// first choice's content.
func (i *Inferencer) Infer(ctx context.Context, systemContext, prompt string) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if systemContext != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: systemContext,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := i.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       i.model,
		Messages:    messages,
		Temperature: 0.85,
		TopP:        0.95,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Close releases resources held by the inferencer.
func (i *Inferencer) Close() error {
	return nil
}

var _ llm.Inferencer = (*Inferencer)(nil)
