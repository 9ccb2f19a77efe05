// Package continuitycmder
package continuitycmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/novelforge/continuity/cmd/continuity/config"
	initcmder "github.com/novelforge/continuity/cmd/continuity/init"
	servecmder "github.com/novelforge/continuity/cmd/continuity/serve"
	versioncmder "github.com/novelforge/continuity/cmd/continuity/version"
)

const continuityLongDesc string = `Continuity is a narrative memory engine for long-form writing.

It keeps track of what a story has already established (characters, places,
relations, recent dialogue) and assembles budgeted context windows so a
generation model stays consistent with the manuscript.

Run services using:
  continuity serve     Run the memory API server

Manage configuration:
  continuity init      Initialize a local .continuity/ directory
  continuity config    Get, set, or list configuration values`

const continuityShortDesc string = "Continuity - Narrative Memory Engine"

func NewContinuityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "continuity",
		Short: continuityShortDesc,
		Long:  continuityLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .continuity/ directory location")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
