// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "casedesk",
	Short: "CaseDesk is the support-case management service",
	Long: `CaseDesk is the support-case management service. It authenticates
operators and customers against a local database or a directory service and
resolves per-organization permissions for the web frontend.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
