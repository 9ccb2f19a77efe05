// Package llmutils is the llm utility package
package llmutils

import (
	"fmt"

	"github.com/novelforge/continuity/pkg/llm"
	"github.com/novelforge/continuity/pkg/llm/ollama"
	"github.com/novelforge/continuity/pkg/llm/openai"
)

type NewInferencerOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
}

func NewInferencer(o *NewInferencerOpts) (llm.Inferencer, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewInferencer(ollama.InferencerConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "openai":
		return openai.NewInferencer(openai.InferencerConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", o.ProviderType)
	}
}
