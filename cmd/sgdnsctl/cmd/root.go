package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sgdnsctl",
	Short: "Operate the sgdns-discovery DNS sync controller",
	Long: `sgdnsctl drives the same internal packages as the lifecycle-handler
and reconciler services: manual or bulk record sync, offline config
validation, and lock inspection.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(lockCmd)
}
