package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "faultdrill",
	Short: "AM2 fault-finding practice in the terminal",
	Long: "FaultDrill simulates the AM2 fault-finding assessment: seven wiring faults,\n" +
		"a multifunction tester, and a two-hour exam clock.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, "")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/faultdrill/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides FAULTDRILL_DB)")
	rootCmd.PersistentFlags().String("storage", "", "Storage driver: sqlite, postgres, mongo or memory")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(debriefCmd)
	rootCmd.AddCommand(versionCmd)
}
