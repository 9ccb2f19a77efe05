package config

import (
	"fmt"
	"strconv"
	"strings"
)

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// stringKey builds a configKeyInfo over a plain string field.
func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// intKey builds a configKeyInfo over an int field. A zero value reads back
// as "" so unset fields render as <not set> in the CLI.
func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.Itoa(*field(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider":     stringKey(func(c *Config) *string { return &c.Storage.Provider }),
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_url": stringKey(func(c *Config) *string { return &c.Storage.PostgresURL }),

	"api.listen": stringKey(func(c *Config) *string { return &c.API.Listen }),

	"assembler.max_context_units":   intKey("assembler.max_context_units", func(c *Config) *int { return &c.Assembler.MaxContextUnits }),
	"assembler.reserved_units":      intKey("assembler.reserved_units", func(c *Config) *int { return &c.Assembler.ReservedUnits }),
	"assembler.short_term_capacity": intKey("assembler.short_term_capacity", func(c *Config) *int { return &c.Assembler.ShortTermCapacity }),
	"assembler.search_limit":        intKey("assembler.search_limit", func(c *Config) *int { return &c.Assembler.SearchLimit }),

	"summarizer.max_depth":         intKey("summarizer.max_depth", func(c *Config) *int { return &c.Summarizer.MaxDepth }),
	"summarizer.max_chunk_units":   intKey("summarizer.max_chunk_units", func(c *Config) *int { return &c.Summarizer.MaxChunkUnits }),
	"summarizer.overlap_words":     intKey("summarizer.overlap_words", func(c *Config) *int { return &c.Summarizer.OverlapWords }),
	"summarizer.cache_ttl_minutes": intKey("summarizer.cache_ttl_minutes", func(c *Config) *int { return &c.Summarizer.CacheTTLMinutes }),
	"summarizer.timeout_seconds":   intKey("summarizer.timeout_seconds", func(c *Config) *int { return &c.Summarizer.TimeoutSeconds }),

	"inference.provider": stringKey(func(c *Config) *string { return &c.Inference.Provider }),
	"inference.target":   stringKey(func(c *Config) *string { return &c.Inference.Target }),
	"inference.model":    stringKey(func(c *Config) *string { return &c.Inference.Model }),

	"embedding.provider": stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":   stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":    stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},

	"vector_store.provider": stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":   stringKey(func(c *Config) *string { return &c.VectorStore.Target }),

	"cache.provider":   stringKey(func(c *Config) *string { return &c.Cache.Provider }),
	"cache.redis_addr": stringKey(func(c *Config) *string { return &c.Cache.RedisAddr }),

	"event_stream.provider": stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"event_stream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = c.EventStream.Brokers[:0]
			for _, b := range strings.Split(v, ",") {
				b = strings.TrimSpace(b)
				if b != "" {
					c.EventStream.Brokers = append(c.EventStream.Brokers, b)
				}
			}
			return nil
		},
	},
	"event_stream.topic": stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
}

// orderedKeys lists every config key in TOML section order for stable
// CLI output.
var orderedKeys = []string{
	"storage.provider",
	"storage.sqlite_path",
	"storage.postgres_url",
	"api.listen",
	"assembler.max_context_units",
	"assembler.reserved_units",
	"assembler.short_term_capacity",
	"assembler.search_limit",
	"summarizer.max_depth",
	"summarizer.max_chunk_units",
	"summarizer.overlap_words",
	"summarizer.cache_ttl_minutes",
	"summarizer.timeout_seconds",
	"inference.provider",
	"inference.target",
	"inference.model",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"vector_store.provider",
	"vector_store.target",
	"cache.provider",
	"cache.redis_addr",
	"event_stream.provider",
	"event_stream.brokers",
	"event_stream.topic",
}

// ValidConfigKeys returns the list of all supported configuration key names
// in a stable, logical order matching the TOML section layout.
func ValidConfigKeys() []string {
	result := make([]string, 0, len(orderedKeys))
	for _, k := range orderedKeys {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that the ordered list missed.
	seen := make(map[string]bool, len(result))
	for _, k := range result {
		seen[k] = true
	}
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}
