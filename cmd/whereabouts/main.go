package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/whereabouts/cmd/whereabouts/commands"
	"github.com/teranos/whereabouts/logger"
)

var jsonLogs bool

var rootCmd = &cobra.Command{
	Use:   "whereabouts",
	Short: "whereabouts - WiFi fingerprinting collection and prediction service",
	Long: `whereabouts - WiFi-fingerprinting backend.

Collects labeled RSSI samples over a user/place/location hierarchy,
exports them as classifier-ready CSV, and serves real-time location
predictions over WebSocket by delegating to an external classifier.

Available commands:
  serve  - Start the collection/prediction server
  db     - Manage database operations
  export - Export a place's samples to CSV

Examples:
  whereabouts serve                # Start the server
  whereabouts db migrate           # Apply schema migrations
  whereabouts db stats             # Show row counts per table
  whereabouts export 3             # Write output/place_3.csv`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit JSON structured logs")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigFile, "config", "", "Path to config file (default: whereabouts.toml)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.DBCmd)
	rootCmd.AddCommand(commands.ExportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
