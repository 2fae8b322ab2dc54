package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modgrid/modgrid-cli/internal/config"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse plugin manifests into the normalized module list",
	Long: `Ingest discovers every *.json manifest under the configured manifests
directory, filters plugins by version and exclusion list, drops hidden and
deprecated modules, and writes the surviving records to the module list file.`,
	RunE: runIngest,
}

var flagManifestsDir string

func init() {
	ingestCmd.Flags().StringVar(&flagManifestsDir, "manifests", "", "Override the configured manifests directory")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'modgrid init' first.", err)
	}
	if flagManifestsDir != "" {
		cfg.ManifestsDir = flagManifestsDir
	}

	printSection("Ingest")
	records, err := ingestModules(cfg, newReporter())
	if err != nil {
		return err
	}

	printOK("", fmt.Sprintf("%d modules written to %s", len(records), cfg.ModulesFile))
	return nil
}
