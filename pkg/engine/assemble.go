package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/graph"
)

const (
	recentContextLabel  = "=== Recent Context ==="
	relevantMemoryLabel = "=== Relevant Memories ==="
	knowledgeGraphLabel = "=== Knowledge Graph ==="
)

// AssembleOptions selects which blocks the assembled context includes.
type AssembleOptions struct {
	IncludeShortTerm bool
	IncludeLongTerm  bool
	IncludeGraph     bool
}

// DefaultAssembleOptions includes every block.
func DefaultAssembleOptions() AssembleOptions {
	return AssembleOptions{
		IncludeShortTerm: true,
		IncludeLongTerm:  true,
		IncludeGraph:     true,
	}
}

// AssembleContext builds the prompt context for a query. Blocks appear in
// fixed order: recent context, relevant memories, knowledge graph, then the
// query itself. When the query alone exhausts the budget the query is
// returned unchanged; a degraded result, not an error.
func (e *Engine) AssembleContext(ctx context.Context, projectID, query string, opts AssembleOptions) (string, error) {
	budget := e.cfg.MaxContextUnits - e.est.Estimate(query) - e.cfg.ReservedUnits
	if budget <= 0 {
		e.logger.Warn("query exhausts context budget, returning it bare",
			zap.String("project_id", projectID),
			zap.Int("query_units", e.est.Estimate(query)),
			zap.Int("max_context_units", e.cfg.MaxContextUnits),
		)
		return query, nil
	}

	var blocks []string

	if opts.IncludeShortTerm {
		if block := e.shortTermBlock(projectID); block != "" {
			blocks = append(blocks, block)
			budget -= e.est.Estimate(block)
		}
	}

	if opts.IncludeLongTerm && budget > 0 {
		block, err := e.longTermBlock(ctx, projectID, query, budget)
		if err != nil {
			return "", err
		}
		if block != "" {
			blocks = append(blocks, block)
			budget -= e.est.Estimate(block)
		}
	}

	if opts.IncludeGraph && budget > 0 {
		block, err := e.graphBlock(ctx, projectID, query)
		if err != nil {
			return "", err
		}
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	blocks = append(blocks, query)
	return strings.Join(blocks, "\n\n"), nil
}

// shortTermBlock formats the recent window. Never summarized, the window is
// already bounded by capacity.
func (e *Engine) shortTermBlock(projectID string) string {
	entries := e.short.Get(projectID, 0)
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(recentContextLabel)
	for _, entry := range entries {
		b.WriteString(fmt.Sprintf("\n[%s] %s", entry.Type, entry.Content))
	}
	return b.String()
}

// longTermBlock fetches matches and summarizes them when they exceed the
// remaining budget.
func (e *Engine) longTermBlock(ctx context.Context, projectID, query string, budget int) (string, error) {
	results, err := e.long.Search(ctx, projectID, query, e.cfg.SearchLimit)
	if err != nil {
		return "", fmt.Errorf("searching long-term memory: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}

	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("[%s] %s", r.Type, r.Content)
	}
	body := strings.Join(lines, "\n")

	labelUnits := e.est.Estimate(relevantMemoryLabel)
	if e.est.Estimate(body) > budget-labelUnits {
		target := budget - labelUnits
		if target < 1 {
			target = 1
		}
		body = e.summarizer.Summarize(ctx, body, target, e.cfg.SummaryDepth)
	}
	if strings.TrimSpace(body) == "" {
		return "", nil
	}

	return relevantMemoryLabel + "\n" + body, nil
}

// graphBlock finds the first entity whose name appears in the query and
// formats its relations.
func (e *Engine) graphBlock(ctx context.Context, projectID, query string) (string, error) {
	entities, err := e.graph.Entities(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("listing entities: %w", err)
	}

	lowerQuery := strings.ToLower(query)
	for _, entity := range entities {
		if entity.Name == "" || !strings.Contains(lowerQuery, strings.ToLower(entity.Name)) {
			continue
		}

		relations, err := e.graph.Relations(ctx, projectID, "", entity.ID)
		if err != nil {
			return "", fmt.Errorf("listing relations: %w", err)
		}

		var b strings.Builder
		b.WriteString(knowledgeGraphLabel)
		b.WriteString(fmt.Sprintf("\n%s (%s)", entity.Name, entity.Type))
		for _, rel := range relations {
			b.WriteString("\n" + e.formatRelation(ctx, projectID, rel))
		}
		return b.String(), nil
	}

	return "", nil
}

func (e *Engine) formatRelation(ctx context.Context, projectID string, rel graph.Relation) string {
	source := rel.SourceID
	if entity, ok, err := e.graph.GetEntity(ctx, projectID, rel.SourceID); err == nil && ok {
		source = entity.Name
	}
	target := rel.TargetID
	if entity, ok, err := e.graph.GetEntity(ctx, projectID, rel.TargetID); err == nil && ok {
		target = entity.Name
	}
	return fmt.Sprintf("%s -[%s]-> %s", source, rel.Type, target)
}
