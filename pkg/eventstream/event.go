package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExchangeRecorded is emitted after a query/result exchange is
	// written into memory.
	EventTypeExchangeRecorded = "continuity.exchange.recorded"
)

// ExchangeRecordedEvent is a transport-neutral event payload for a recorded
// exchange.
type ExchangeRecordedEvent struct {
	SchemaVersion int           `json:"schema_version"`
	EventType     string        `json:"event_type"`
	EventID       string        `json:"event_id"`
	EmittedAt     time.Time     `json:"emitted_at"`
	Source        EventSource   `json:"source"`
	Exchange      ExchangeMeta  `json:"exchange"`
	Knowledge     KnowledgeMeta `json:"knowledge"`
}

// EventSource identifies where the exchange originated.
type EventSource struct {
	ProjectID string `json:"project_id"`
	Origin    string `json:"origin,omitempty"`
}

// ExchangeMeta captures the recorded entry IDs and sizes.
type ExchangeMeta struct {
	QueryEntryID  string `json:"query_entry_id"`
	ResultEntryID string `json:"result_entry_id"`
	QueryUnits    int    `json:"query_units"`
	ResultUnits   int    `json:"result_units"`
}

// KnowledgeMeta captures what the graph learned from the exchange.
type KnowledgeMeta struct {
	MentionCount int `json:"mention_count"`
	IssueCount   int `json:"issue_count"`
}
