// Package tokens estimates the model-consumption cost of text in token units.
//
// The hot path never touches a network or a model: the default Heuristic
// estimator weighs two character classes and rounds up. When an exact
// tokenizer is available, the Precise estimator wraps tiktoken's cl100k_base
// encoding; callers that fail to construct it fall back to the heuristic.
package tokens

import (
	"math"
	"unicode"
)

// Estimator reports the token-unit cost of a string.
//
// Implementations must be monotone (estimating a concatenation never costs
// less than either part alone) and must always return a non-negative count.
type Estimator interface {
	Estimate(text string) int
}

// Heuristic approximates token cost from character classes: wide-script
// runes (CJK and friends) cost one unit per 1.5 characters, everything else
// one unit per 4 characters. The sum is rounded up.
type Heuristic struct{}

// NewHeuristic returns the fallback estimator.
func NewHeuristic() Heuristic {
	return Heuristic{}
}

// Estimate returns the approximate token-unit cost of text.
func (Heuristic) Estimate(text string) int {
	if text == "" {
		return 0
	}

	var wide, narrow int
	for _, r := range text {
		if isWide(r) {
			wide++
		} else {
			narrow++
		}
	}

	return int(math.Ceil(float64(wide)/1.5 + float64(narrow)/4))
}

// isWide reports whether a rune belongs to a script where characters carry
// roughly a token each (CJK ideographs, kana, hangul).
func isWide(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
