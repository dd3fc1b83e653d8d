// Package cmd defines the crewctl command tree.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crewctl",
	Short: "Manage your Crewdeck digital workforce",
	Long: `crewctl is the command-line companion to the Crewdeck dashboard.
It observes and controls your digital workers, follows their activity in
near real time, and manages third-party integration credentials through
the same authenticated API the dashboard uses.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under the given context so remote
// calls stop on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.crewctl/config.yaml)")
	rootCmd.PersistentFlags().Bool("json", false, "output machine-readable JSON")
}
