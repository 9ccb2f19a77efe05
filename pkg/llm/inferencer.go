// Package llm defines the inference driver used for generation and
// summarization.
package llm

import "context"

// Inferencer produces a completion for a prompt. systemContext, when
// non-empty, is sent as the system message ahead of the prompt.
type Inferencer interface {
	Infer(ctx context.Context, systemContext, prompt string) (string, error)
	Close() error
}
