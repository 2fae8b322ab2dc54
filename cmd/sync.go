package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modgrid/modgrid-cli/internal/config"
	"github.com/modgrid/modgrid-cli/internal/manifest"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror module screenshots into the local cache",
	Long: `Sync walks the module list and makes sure every module's screenshot is
present and fresh in the local cache, transferring as little as possible:

  no local copy                         → download
  plugin not rebuilt inside the window  → keep cached copy, no network
  remote size matches local size        → keep cached copy
  otherwise                             → re-download`,
	RunE: runSync,
}

var flagSyncWorkers int

func init() {
	syncCmd.Flags().IntVar(&flagSyncWorkers, "workers", 0, "Concurrent downloads (default: configured value)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'modgrid init' first.", err)
	}
	if flagSyncWorkers > 0 {
		cfg.Workers = flagSyncWorkers
	}

	records, err := manifest.LoadRecords(cfg.ModulesFile)
	if err != nil {
		return fmt.Errorf("%w\nRun 'modgrid ingest' first.", err)
	}

	unlock, err := acquireRunLock(cfg.RequestTimeout())
	if err != nil {
		return err
	}
	defer unlock()

	printSection("Sync")
	if _, err := os.Stat(cfg.TimestampCache); err != nil {
		printWarn("", fmt.Sprintf("no timestamp cache at %s; every cached screenshot will be size-probed", cfg.TimestampCache))
	}
	s, err := syncAssets(cmd.Context(), cfg, newReporter(), records)
	if err != nil {
		return err
	}

	printOK("", fmt.Sprintf("%d downloaded, %d skipped (%d modules)", s.Fetched(), s.Skipped(), len(records)))
	return nil
}
