package config

// Config represents the persistent continuity configuration stored as
// config.toml in the .continuity/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	Assembler   AssemblerConfig   `toml:"assembler"`
	Summarizer  SummarizerConfig  `toml:"summarizer"`
	Inference   InferenceConfig   `toml:"inference"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Cache       CacheConfig       `toml:"cache"`
	EventStream EventStreamConfig `toml:"event_stream"`
}

// StorageConfig holds relational store settings for memory entries and
// knowledge graph documents.
type StorageConfig struct {
	// Provider is "sqlite" or "postgres".
	Provider string `toml:"provider,omitempty"`

	// SQLitePath is the database file path when Provider is "sqlite".
	// ":memory:" is accepted for throwaway runs.
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// PostgresURL is the connection URI when Provider is "postgres".
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// AssemblerConfig holds context assembly budgets.
type AssemblerConfig struct {
	// MaxContextUnits is the total token-unit budget for one assembled context.
	MaxContextUnits int `toml:"max_context_units,omitempty"`

	// ReservedUnits is held back from the budget as joining/labeling headroom.
	ReservedUnits int `toml:"reserved_units,omitempty"`

	// ShortTermCapacity is the per-project short-term buffer size.
	ShortTermCapacity int `toml:"short_term_capacity,omitempty"`

	// SearchLimit is how many long-term matches a context pulls in.
	SearchLimit int `toml:"search_limit,omitempty"`
}

// SummarizerConfig holds recursive summarization policy.
type SummarizerConfig struct {
	MaxDepth      int `toml:"max_depth,omitempty"`
	MaxChunkUnits int `toml:"max_chunk_units,omitempty"`
	OverlapWords  int `toml:"overlap_words,omitempty"`

	// CacheTTLMinutes bounds how long summaries are cached per
	// (content hash, target) pair.
	CacheTTLMinutes int `toml:"cache_ttl_minutes,omitempty"`

	// TimeoutSeconds caps a single summarization inference call before the
	// truncation fallback takes over.
	TimeoutSeconds int `toml:"timeout_seconds,omitempty"`
}

// InferenceConfig holds text-generation backend settings.
type InferenceConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	// Provider is "sqlite" or "pgvector".
	Provider string `toml:"provider,omitempty"`

	// Target is the sqlite file path or postgres URI, depending on Provider.
	Target string `toml:"target,omitempty"`
}

// CacheConfig holds summary-cache backend settings.
type CacheConfig struct {
	// Provider is "memory" or "redis".
	Provider  string `toml:"provider,omitempty"`
	RedisAddr string `toml:"redis_addr,omitempty"`
}

// EventStreamConfig holds exchange event publishing settings.
type EventStreamConfig struct {
	// Provider is "nop" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}
