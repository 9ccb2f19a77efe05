package config

const (
	defaultStorageProvider = "sqlite"
	defaultSQLitePath      = "continuity.db"
	defaultAPIListen       = ":8082"

	defaultMaxContextUnits   = 4000
	defaultReservedUnits     = 100
	defaultShortTermCapacity = 10
	defaultSearchLimit       = 5

	defaultSummaryMaxDepth   = 3
	defaultMaxChunkUnits     = 1000
	defaultOverlapWords      = 100
	defaultCacheTTLMinutes   = 60
	defaultInferTimeoutSecs  = 60
	defaultInferenceProvider = "ollama"
	defaultInferenceTarget   = "http://localhost:11434"
	defaultInferenceModel    = "qwen2.5:7b"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultVectorProvider = "sqlite"
	defaultVectorTarget   = "continuity-vec.db"

	defaultCacheProvider = "memory"

	defaultEventProvider = "nop"
	defaultEventTopic    = "continuity.exchanges"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider:   defaultStorageProvider,
			SQLitePath: defaultSQLitePath,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Assembler: AssemblerConfig{
			MaxContextUnits:   defaultMaxContextUnits,
			ReservedUnits:     defaultReservedUnits,
			ShortTermCapacity: defaultShortTermCapacity,
			SearchLimit:       defaultSearchLimit,
		},
		Summarizer: SummarizerConfig{
			MaxDepth:        defaultSummaryMaxDepth,
			MaxChunkUnits:   defaultMaxChunkUnits,
			OverlapWords:    defaultOverlapWords,
			CacheTTLMinutes: defaultCacheTTLMinutes,
			TimeoutSeconds:  defaultInferTimeoutSecs,
		},
		Inference: InferenceConfig{
			Provider: defaultInferenceProvider,
			Target:   defaultInferenceTarget,
			Model:    defaultInferenceModel,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
			Target:   defaultVectorTarget,
		},
		Cache: CacheConfig{
			Provider: defaultCacheProvider,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventProvider,
			Topic:    defaultEventTopic,
		},
	}
}
