package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/whereabouts/store"
)

// DBCmd groups database management subcommands
var DBCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage database operations",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()
		// openDatabase migrates; reaching here means the schema is current
		fmt.Println("Database schema is up to date")
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts per table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		st := store.NewSQLStore(conn, nil)
		counts, err := st.Stats(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("users:         %d\n", counts.Users)
		fmt.Printf("places:        %d\n", counts.Places)
		fmt.Printf("locations:     %d\n", counts.Locations)
		fmt.Printf("samples:       %d\n", counts.Samples)
		fmt.Printf("rssi_readings: %d\n", counts.Readings)
		return nil
	},
}

func init() {
	DBCmd.AddCommand(dbMigrateCmd)
	DBCmd.AddCommand(dbStatsCmd)
}
