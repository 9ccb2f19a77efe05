// Package summarizer compresses narrative text to a token-unit target via
// recursive chunked summarization.
package summarizer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/cache"
	"github.com/novelforge/continuity/pkg/chunker"
	"github.com/novelforge/continuity/pkg/llm"
	"github.com/novelforge/continuity/pkg/tokens"
)

const (
	// DefaultMaxChunkUnits is the per-chunk size used when recursing.
	DefaultMaxChunkUnits = 1000

	// DefaultOverlapWords is the word overlap carried between chunks.
	DefaultOverlapWords = 100

	// DefaultCacheTTL bounds how long a summary is reused.
	DefaultCacheTTL = time.Hour

	// DefaultInferTimeout bounds a single summarization inference call.
	DefaultInferTimeout = 60 * time.Second
)

const summaryInstruction = "You are a summarizer for long-form fiction. " +
	"Condense the text you are given, preserving plot developments, character " +
	"state, and unresolved threads. Respond with the summary only."

// Summarizer produces bounded summaries. The bound is best effort: the
// sentence-truncation backstop in the leaf path is the only hard limit.
type Summarizer struct {
	inferencer llm.Inferencer
	est        tokens.Estimator
	chunks     *chunker.Chunker
	cache      cache.Cache
	logger     *zap.Logger

	maxChunkUnits int
	overlapWords  int
	cacheTTL      time.Duration
	inferTimeout  time.Duration
}

// Config holds tuning knobs for the summarizer. Zero values fall back to
// the package defaults.
type Config struct {
	MaxChunkUnits int
	OverlapWords  int
	CacheTTL      time.Duration
	InferTimeout  time.Duration
}

// NewSummarizer creates a summarizer over the given inferencer, estimator,
// and cache.
func NewSummarizer(inferencer llm.Inferencer, est tokens.Estimator, c cache.Cache, cfg Config, logger *zap.Logger) *Summarizer {
	if cfg.MaxChunkUnits <= 0 {
		cfg.MaxChunkUnits = DefaultMaxChunkUnits
	}
	if cfg.OverlapWords < 0 {
		cfg.OverlapWords = DefaultOverlapWords
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.InferTimeout <= 0 {
		cfg.InferTimeout = DefaultInferTimeout
	}

	return &Summarizer{
		inferencer:    inferencer,
		est:           est,
		chunks:        chunker.New(est),
		cache:         c,
		logger:        logger,
		maxChunkUnits: cfg.MaxChunkUnits,
		overlapWords:  cfg.OverlapWords,
		cacheTTL:      cfg.CacheTTL,
		inferTimeout:  cfg.InferTimeout,
	}
}

// Summarize compresses text toward targetUnits. maxDepth bounds recursion;
// depth 0 forces a single leaf pass regardless of input size.
func (s *Summarizer) Summarize(ctx context.Context, text string, targetUnits, maxDepth int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if targetUnits <= 0 {
		targetUnits = 1
	}

	if s.est.Estimate(text) <= targetUnits || maxDepth <= 0 {
		return s.leaf(ctx, text, targetUnits)
	}

	chunks := s.chunks.Split(text, s.maxChunkUnits, s.overlapWords)
	if len(chunks) <= 1 {
		return s.leaf(ctx, text, targetUnits)
	}

	// Reserve ~10% for joining; weight the final chunk heavier since the
	// most recent material matters most for continuation.
	perChunk := float64(targetUnits) / float64(len(chunks)) * 0.9

	parts := make([]string, 0, len(chunks))
	for i, ch := range chunks {
		budget := perChunk
		if i == len(chunks)-1 {
			budget *= 1.5
		}
		chunkTarget := int(budget)
		if chunkTarget < 1 {
			chunkTarget = 1
		}
		parts = append(parts, s.Summarize(ctx, ch, chunkTarget, maxDepth-1))
	}

	joined := strings.Join(parts, "\n\n")
	if s.est.Estimate(joined) > targetUnits {
		return s.leaf(ctx, joined, targetUnits)
	}
	return joined
}

// leaf performs a single summarization pass: cached inference with a
// sentence-truncation backstop, falling back to tail-word compression when
// inference fails.
func (s *Summarizer) leaf(ctx context.Context, text string, targetUnits int) string {
	if s.est.Estimate(text) <= targetUnits {
		return text
	}

	key := cacheKey(text, targetUnits)

	if cached, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return cached
	}

	inferCtx, cancel := context.WithTimeout(ctx, s.inferTimeout)
	defer cancel()

	result, err := s.inferencer.Infer(inferCtx, summaryInstruction, text)
	if err != nil {
		s.logger.Warn("summarization inference failed, using tail fallback",
			zap.Int("target_units", targetUnits),
			zap.Error(err),
		)
		return s.tailFallback(text, targetUnits)
	}

	result = strings.TrimSpace(result)
	if s.est.Estimate(result) > targetUnits {
		result = s.truncateToBudget(result, targetUnits)
	}

	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.logger.Warn("caching summary failed", zap.Error(err))
	}

	return result
}

// truncateToBudget drops trailing sentences until the text fits. When even
// the first sentence is over budget it is cut at a word boundary.
func (s *Summarizer) truncateToBudget(text string, targetUnits int) string {
	sentences := chunker.SplitSentences(text)

	var (
		kept  []string
		total int
	)
	for _, sentence := range sentences {
		units := s.est.Estimate(sentence)
		if total+units > targetUnits {
			break
		}
		kept = append(kept, sentence)
		total += units
	}

	if len(kept) > 0 {
		return strings.Join(kept, " ")
	}

	words := strings.Fields(text)
	for len(words) > 1 && s.est.Estimate(strings.Join(words, " ")) > targetUnits {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// tailFallback keeps the trailing fraction of the words proportional to the
// budget, since the most recent narrative material is most relevant.
func (s *Summarizer) tailFallback(text string, targetUnits int) string {
	total := s.est.Estimate(text)
	if total <= targetUnits {
		return text
	}

	words := strings.Fields(text)
	keep := len(words) * targetUnits / total
	if keep < 1 {
		keep = 1
	}
	if keep >= len(words) {
		return text
	}

	return "... " + strings.Join(words[len(words)-keep:], " ")
}

func cacheKey(text string, targetUnits int) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("summary:%x:%d", sum, targetUnits)
}
