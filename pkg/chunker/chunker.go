// Package chunker splits long narrative text into overlapping segments
// bounded by a token-unit budget.
//
// Splitting prefers paragraph boundaries; a paragraph that alone exceeds the
// budget is re-split on sentence boundaries. Consecutive chunks share a
// word-measured overlap so that downstream summarization does not lose
// information at chunk seams. Splitting is pure and deterministic.
package chunker

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/novelforge/continuity/pkg/tokens"
)

var paragraphSep = regexp.MustCompile(`\n+`)

// Chunker splits text using an injected token estimator.
type Chunker struct {
	est tokens.Estimator
}

// New creates a Chunker backed by the given estimator.
func New(est tokens.Estimator) *Chunker {
	return &Chunker{est: est}
}

// Split breaks text into ordered chunks of at most maxUnits estimated token
// units each. overlapWords is measured in whitespace-delimited words (an
// approximation of the unit budget) carried from the tail of one chunk into
// the head of the next. Empty input yields no chunks.
func (c *Chunker) Split(text string, maxUnits, overlapWords int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxUnits <= 0 {
		return []string{text}
	}

	paragraphs := paragraphSep.Split(text, -1)

	var (
		chunks       []string
		current      string
		currentUnits int
	)

	flush := func(carryOverlap bool) {
		if current == "" {
			return
		}
		chunks = append(chunks, current)
		if carryOverlap && overlapWords > 0 {
			current = tailWords(current, overlapWords)
			currentUnits = c.est.Estimate(current)
		} else {
			current = ""
			currentUnits = 0
		}
	}

	for _, para := range paragraphs {
		if strings.TrimSpace(para) == "" {
			continue
		}

		paraUnits := c.est.Estimate(para)

		if paraUnits > maxUnits {
			// Oversized paragraph: flush what we have, then pack its
			// sentences one at a time.
			flush(true)

			for _, sentence := range SplitSentences(para) {
				sentUnits := c.est.Estimate(sentence)

				if current != "" && currentUnits+sentUnits > maxUnits {
					flush(false)
				}
				if current == "" {
					current = sentence
					currentUnits = sentUnits
				} else {
					current += " " + sentence
					currentUnits += sentUnits
				}
			}
			continue
		}

		if current != "" && currentUnits+paraUnits > maxUnits {
			flush(true)
		}
		if current == "" {
			current = para
			currentUnits = c.est.Estimate(current)
		} else {
			current += "\n" + para
			currentUnits += paraUnits
		}
	}

	flush(false)

	return chunks
}

// tailWords returns the last n whitespace-delimited words of s.
func tailWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-n:], " ")
}

// SplitSentences splits text after sentence-terminating punctuation,
// covering both ASCII terminators and their CJK counterparts.
func SplitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}

		// Absorb trailing closers and whitespace into the sentence.
		end := i + 1
		for end < len(runes) && (isCloser(runes[end]) || unicode.IsSpace(runes[end])) {
			end++
		}

		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}

	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '」', '』':
		return true
	}
	return false
}
