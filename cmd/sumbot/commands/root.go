// Package commands implements the sumbot CLI commands using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root CLI command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sumbot",
		Short: "Signal group discussion summarizer",
		Long: `sumbot is a daemon that watches a single Signal group through a
signal-cli-rest-api relay, logs its messages, and answers the /summary
reply command with an LLM-generated summary of the discussion starting
at the quoted message.

Examples:
  sumbot serve
  sumbot serve --config ./sumbot.yaml`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
	)

	// Global flags.
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
