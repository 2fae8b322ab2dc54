package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modgrid/modgrid-cli/internal/config"
	"github.com/modgrid/modgrid-cli/internal/manifest"
	"github.com/modgrid/modgrid-cli/internal/stats"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show tag usage statistics across the module list",
	RunE:  runTags,
}

var flagTagsTop int

func init() {
	tagsCmd.Flags().IntVar(&flagTagsTop, "top", 0, "Show only the N most used tags (0 = all)")
	rootCmd.AddCommand(tagsCmd)
}

func runTags(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'modgrid init' first.", err)
	}

	records, err := manifest.LoadRecords(cfg.ModulesFile)
	if err != nil {
		return fmt.Errorf("%w\nRun 'modgrid ingest' first.", err)
	}

	total, unique := stats.Totals(records)
	counts := stats.TagCounts(records)
	if flagTagsTop > 0 && flagTagsTop < len(counts) {
		counts = counts[:flagTagsTop]
	}

	printSection("Tag Statistics")
	printInfo("", fmt.Sprintf("%d tag occurrences across %d modules, %d unique", total, len(records), unique))
	fmt.Println()
	for _, tc := range counts {
		fmt.Printf("  %5d  %s\n", tc.Count, tc.Tag)
	}
	return nil
}
