// Package engine orchestrates the memory tiers, knowledge graph, and
// summarizer into context assembly for generation.
package engine

import (
	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/eventstream"
	"github.com/novelforge/continuity/pkg/graph"
	"github.com/novelforge/continuity/pkg/memory"
	"github.com/novelforge/continuity/pkg/summarizer"
	"github.com/novelforge/continuity/pkg/tokens"
)

const (
	// DefaultMaxContextUnits is the overall context budget.
	DefaultMaxContextUnits = 4000

	// DefaultReservedUnits is held back from the budget for the response.
	DefaultReservedUnits = 100

	// DefaultSearchLimit bounds long-term matches pulled per assembly.
	DefaultSearchLimit = 5

	// DefaultSummaryDepth bounds recursive summarization.
	DefaultSummaryDepth = 3
)

// Config holds the assembly budget knobs. Zero values fall back to the
// package defaults.
type Config struct {
	MaxContextUnits int
	ReservedUnits   int
	SearchLimit     int
	SummaryDepth    int
}

// Engine wires the memory tiers, graph, and summarizer behind the outbound
// operations. Constructed once at startup and shared across requests;
// project IDs are the sharding key, no cross-project coordination happens
// here.
type Engine struct {
	short      *memory.ShortTermMemory
	long       *memory.LongTermMemory
	graph      *graph.KnowledgeGraph
	summarizer *summarizer.Summarizer
	est        tokens.Estimator
	publisher  eventstream.Publisher
	logger     *zap.Logger
	cfg        Config
}

// New creates an engine over the given components.
func New(
	short *memory.ShortTermMemory,
	long *memory.LongTermMemory,
	kg *graph.KnowledgeGraph,
	sum *summarizer.Summarizer,
	est tokens.Estimator,
	publisher eventstream.Publisher,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if cfg.MaxContextUnits <= 0 {
		cfg.MaxContextUnits = DefaultMaxContextUnits
	}
	if cfg.ReservedUnits <= 0 {
		cfg.ReservedUnits = DefaultReservedUnits
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultSearchLimit
	}
	if cfg.SummaryDepth <= 0 {
		cfg.SummaryDepth = DefaultSummaryDepth
	}

	return &Engine{
		short:      short,
		long:       long,
		graph:      kg,
		summarizer: sum,
		est:        est,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}
