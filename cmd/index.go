package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modgrid/modgrid-cli/internal/config"
	"github.com/modgrid/modgrid-cli/internal/manifest"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the search index from modules, timestamps and screenshots",
	Long: `Index fuses the normalized module list with per-module creation
timestamps and with each module's physical size derived from its cached
screenshot width. The result is the compact columnar document the site's
client-side search loads.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'modgrid init' first.", err)
	}

	records, err := manifest.LoadRecords(cfg.ModulesFile)
	if err != nil {
		return fmt.Errorf("%w\nRun 'modgrid ingest' first.", err)
	}

	printSection("Index")
	doc, err := buildSearchIndex(cfg, newReporter(), records)
	if err != nil {
		return err
	}

	printOK("", fmt.Sprintf("%d rows written to %s", len(doc.Data), cfg.IndexFile))
	return nil
}
