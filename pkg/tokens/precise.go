package tokens

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// Precise estimates token cost with a real BPE tokenizer (cl100k_base).
// Encoding a string is pure CPU work, so it stays acceptable on the hot
// path, but construction can fail when the encoding data is unavailable;
// callers should fall back to Heuristic in that case.
type Precise struct {
	codec    tokenizer.Codec
	fallback Heuristic
}

// NewPrecise returns an estimator backed by the cl100k_base encoding.
func NewPrecise() (*Precise, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("loading cl100k_base encoding: %w", err)
	}

	return &Precise{codec: codec}, nil
}

// Estimate returns the exact token count for text. A rare encode failure
// degrades to the heuristic rather than reporting zero cost.
func (p *Precise) Estimate(text string) int {
	if text == "" {
		return 0
	}

	ids, _, err := p.codec.Encode(text)
	if err != nil {
		return p.fallback.Estimate(text)
	}

	return len(ids)
}
