package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "polaris",
	Short: "Polaris - governance control plane for agent fleets",
	Long: `Polaris is a governance control plane for autonomous agent fleets.

Agents ask it for authorization before acting; operators use it to roll
policy changes out safely:
  - Policy-based allow/deny/approval decisions for agent actions
  - Canary activation, quality gates, promotion, and rollback for bundles
  - What-if simulation of candidate rule sets before any rollout
  - Incident records for rollbacks and governance breaches`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
