// Package configcmder provides the config command for managing persistent
// continuity configuration stored in the .continuity/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent continuity configuration.

Configuration is stored as config.toml in the .continuity/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_url,
  api.listen,
  assembler.max_context_units, assembler.reserved_units,
  assembler.short_term_capacity, assembler.search_limit,
  summarizer.max_depth, summarizer.max_chunk_units, summarizer.overlap_words,
  inference.provider, inference.target, inference.model,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  vector_store.provider, vector_store.target,
  cache.provider, cache.redis_addr,
  event_stream.provider, event_stream.brokers, event_stream.topic

Use subcommands to get, set, or list configuration values:
  continuity config set <key> <value>    Set a configuration value
  continuity config get <key>            Get a configuration value
  continuity config list                 List all configuration values

Examples:
  continuity config set inference.provider openai
  continuity config set embedding.model nomic-embed-text
  continuity config get assembler.max_context_units
  continuity config list`

const configShortDesc string = "Manage persistent continuity configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
