package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modgrid/modgrid-cli/internal/config"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the full pipeline: ingest, sync, index",
	RunE:  runBuild,
}

var flagBuildWorkers int

func init() {
	buildCmd.Flags().IntVar(&flagBuildWorkers, "workers", 0, "Concurrent downloads (default: configured value)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'modgrid init' first.", err)
	}
	if flagBuildWorkers > 0 {
		cfg.Workers = flagBuildWorkers
	}

	unlock, err := acquireRunLock(cfg.RequestTimeout())
	if err != nil {
		return err
	}
	defer unlock()

	rep := newReporter()

	printSection("Ingest")
	records, err := ingestModules(cfg, rep)
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf("%d modules written to %s", len(records), cfg.ModulesFile))

	printSection("Sync")
	if _, err := os.Stat(cfg.TimestampCache); err != nil {
		printWarn("", fmt.Sprintf("no timestamp cache at %s; every cached screenshot will be size-probed", cfg.TimestampCache))
	}
	s, err := syncAssets(cmd.Context(), cfg, rep, records)
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf("%d downloaded, %d skipped", s.Fetched(), s.Skipped()))

	printSection("Index")
	doc, err := buildSearchIndex(cfg, rep, records)
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf("%d rows written to %s", len(doc.Data), cfg.IndexFile))

	fmt.Println("\n✓  modgrid build complete.")
	return nil
}
