package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/eventstream"
	"github.com/novelforge/continuity/pkg/memory"
	"github.com/novelforge/continuity/pkg/utils"
)

// RecordExchange writes a query/result pair into both memory tiers, keeps
// the knowledge graph current, and publishes an exchange event. Persistence
// failures propagate; graph and publisher failures are logged so a recorded
// exchange is never lost to a secondary concern.
func (e *Engine) RecordExchange(ctx context.Context, projectID, query, result string) error {
	queryEntry, err := e.long.Add(ctx, memory.Entry{
		ProjectID: projectID,
		Type:      memory.EntryTypeInput,
		Content:   query,
		Metadata:  map[string]any{"role": "user"},
	})
	if err != nil {
		return fmt.Errorf("recording query: %w", err)
	}

	resultEntry, err := e.long.Add(ctx, memory.Entry{
		ProjectID: projectID,
		Type:      memory.EntryTypeOutput,
		Content:   result,
		Metadata:  map[string]any{"role": "assistant"},
	})
	if err != nil {
		return fmt.Errorf("recording result: %w", err)
	}

	e.short.Add(projectID, queryEntry)
	e.short.Add(projectID, resultEntry)

	e.logger.Debug("exchange recorded",
		zap.String("project_id", projectID),
		zap.String("query_entry_id", queryEntry.ID),
		zap.String("result_entry_id", resultEntry.ID),
		zap.String("query", utils.Truncate(query, 120)),
	)

	mentions, err := e.graph.ExtractMentions(ctx, projectID, result, resultEntry.ID)
	if err != nil {
		e.logger.Warn("mention extraction failed",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
	}

	issues, err := e.graph.CheckConsistency(ctx, projectID, result)
	if err != nil {
		e.logger.Warn("consistency check failed",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
	}
	for _, issue := range issues {
		e.logger.Warn("consistency issue detected",
			zap.String("project_id", projectID),
			zap.String("entity_id", issue.EntityID),
			zap.String("detail", issue.String()),
		)
	}

	event := &eventstream.ExchangeRecordedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeExchangeRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        eventstream.EventSource{ProjectID: projectID},
		Exchange: eventstream.ExchangeMeta{
			QueryEntryID:  queryEntry.ID,
			ResultEntryID: resultEntry.ID,
			QueryUnits:    e.est.Estimate(query),
			ResultUnits:   e.est.Estimate(result),
		},
		Knowledge: eventstream.KnowledgeMeta{
			MentionCount: len(mentions),
			IssueCount:   len(issues),
		},
	}
	if err := e.publisher.PublishExchange(ctx, event); err != nil {
		e.logger.Warn("publishing exchange event failed",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
	}

	return nil
}
