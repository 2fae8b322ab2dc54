package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modgrid/modgrid-cli/internal/report"
)

var rootCmd = &cobra.Command{
	Use:          "modgrid",
	Short:        "modgrid — build the searchable module catalog for the marketplace site",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `modgrid turns a library of per-plugin manifests plus a remote screenshot
host into the compact search index served by the marketplace's static site.

The pipeline has three stages, runnable separately or together:

  ingest   parse plugin manifests into a normalized module list
  sync     mirror module screenshots into the local cache
  index    fuse modules, timestamps and screenshot widths into the index
  build    run all three stages in order`,
}

var flagVerbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug output")
}

// newReporter builds the Reporter handed to every pipeline stage.
func newReporter() report.Reporter {
	return report.NewConsole(os.Stderr, flagVerbose)
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
