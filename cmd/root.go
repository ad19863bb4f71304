// Package cmd contains the dropdawn command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dropdawn",
	Short: "Dropdawn - AI chat with deployable results",
	Long: `Dropdawn is an AI chat service. It routes conversations to the
configured model provider and exposes tools for calculation, search,
document generation and deploying websites straight from the chat.

Run "dropdawn serve" to start the HTTP API server.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
