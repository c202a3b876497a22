// Package cmd contains the docbot CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docbot",
	Short: "docbot - documentation chat assistant",
	Long: `docbot serves a conversational assistant with two modes: free chat
with per-user short-term memory, and docs-only answering grounded in a
fixed set of documentation manuals.

Running docbot without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
