package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/novelforge/continuity/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the CONTINUITY_ prefix.
//
// Config precedence (highest to lowest):
//  1. Environment variables (CONTINUITY_API_LISTEN, CONTINUITY_STORAGE_PROVIDER, ...)
//  2. config.toml file values
//  3. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("CONTINUITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_url", d.Storage.PostgresURL)
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("assembler.max_context_units", d.Assembler.MaxContextUnits)
	v.SetDefault("assembler.reserved_units", d.Assembler.ReservedUnits)
	v.SetDefault("assembler.short_term_capacity", d.Assembler.ShortTermCapacity)
	v.SetDefault("assembler.search_limit", d.Assembler.SearchLimit)
	v.SetDefault("summarizer.max_depth", d.Summarizer.MaxDepth)
	v.SetDefault("summarizer.max_chunk_units", d.Summarizer.MaxChunkUnits)
	v.SetDefault("summarizer.overlap_words", d.Summarizer.OverlapWords)
	v.SetDefault("summarizer.cache_ttl_minutes", d.Summarizer.CacheTTLMinutes)
	v.SetDefault("summarizer.timeout_seconds", d.Summarizer.TimeoutSeconds)
	v.SetDefault("inference.provider", d.Inference.Provider)
	v.SetDefault("inference.target", d.Inference.Target)
	v.SetDefault("inference.model", d.Inference.Model)
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("cache.provider", d.Cache.Provider)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("event_stream.provider", d.EventStream.Provider)
	v.SetDefault("event_stream.brokers", d.EventStream.Brokers)
	v.SetDefault("event_stream.topic", d.EventStream.Topic)
}

// FromViper materializes a Config from a viper instance initialized by
// InitViper, so env overrides land in the same struct the rest of the
// engine consumes.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider:    v.GetString("storage.provider"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresURL: v.GetString("storage.postgres_url"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Assembler: AssemblerConfig{
			MaxContextUnits:   v.GetInt("assembler.max_context_units"),
			ReservedUnits:     v.GetInt("assembler.reserved_units"),
			ShortTermCapacity: v.GetInt("assembler.short_term_capacity"),
			SearchLimit:       v.GetInt("assembler.search_limit"),
		},
		Summarizer: SummarizerConfig{
			MaxDepth:        v.GetInt("summarizer.max_depth"),
			MaxChunkUnits:   v.GetInt("summarizer.max_chunk_units"),
			OverlapWords:    v.GetInt("summarizer.overlap_words"),
			CacheTTLMinutes: v.GetInt("summarizer.cache_ttl_minutes"),
			TimeoutSeconds:  v.GetInt("summarizer.timeout_seconds"),
		},
		Inference: InferenceConfig{
			Provider: v.GetString("inference.provider"),
			Target:   v.GetString("inference.target"),
			Model:    v.GetString("inference.model"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
		VectorStore: VectorStoreConfig{
			Provider: v.GetString("vector_store.provider"),
			Target:   v.GetString("vector_store.target"),
		},
		Cache: CacheConfig{
			Provider:  v.GetString("cache.provider"),
			RedisAddr: v.GetString("cache.redis_addr"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("event_stream.provider"),
			Brokers:  v.GetStringSlice("event_stream.brokers"),
			Topic:    v.GetString("event_stream.topic"),
		},
	}

	applyDefaults(cfg)
	return cfg
}
