package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teranos/whereabouts/store"
)

var exportOutputDir string

// ExportCmd writes a place's samples as classifier-ready CSV. The file is
// named place_<id>.csv so the external training step is bound to its input
// by place identifier rather than by whatever file happens to be present.
var ExportCmd = &cobra.Command{
	Use:   "export <place-id>",
	Short: "Export a place's samples to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		placeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("place-id must be an integer: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		outputDir := exportOutputDir
		if outputDir == "" {
			outputDir = cfg.Export.OutputDir
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		path := filepath.Join(outputDir, fmt.Sprintf("place_%d.csv", placeID))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}

		st := store.NewSQLStore(conn, nil)
		if err := st.ExportPlace(context.Background(), placeID, f); err != nil {
			f.Close()
			os.Remove(path) // no partial artifacts
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Printf("Exported place %d to %s\n", placeID, path)
		return nil
	},
}

func init() {
	ExportCmd.Flags().StringVarP(&exportOutputDir, "output-dir", "o", "", "Output directory (default: config export.output_dir)")
}
