package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/modgrid/modgrid-cli/internal/config"
	"github.com/modgrid/modgrid-cli/internal/index"
	"github.com/modgrid/modgrid-cli/internal/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health of inputs, cache and output artifacts",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'modgrid init' first.", err)
	}

	printSection("Inputs")

	if n, err := countFiles(cfg.ManifestsDir, ".json"); err != nil {
		printMiss("manifests", fmt.Sprintf("%s (%v)", cfg.ManifestsDir, err))
	} else {
		printOK("manifests", fmt.Sprintf("%d manifest(s) under %s", n, cfg.ManifestsDir))
	}

	if info, err := os.Stat(cfg.TimestampCache); err != nil {
		printMiss("timestamps", cfg.TimestampCache)
	} else {
		printOK("timestamps", fmt.Sprintf("%s (%s old)", cfg.TimestampCache, age(info.ModTime())))
	}

	printSection("Artifacts")

	records, err := manifest.LoadRecords(cfg.ModulesFile)
	switch {
	case err == nil:
		printOK("modules", fmt.Sprintf("%d module(s) in %s", len(records), cfg.ModulesFile))
	case errors.Is(err, fs.ErrNotExist):
		printMiss("modules", fmt.Sprintf("%s — run 'modgrid ingest'", cfg.ModulesFile))
	default:
		printErr("modules", err.Error())
	}

	if n, err := countFiles(cfg.CacheDir, "."+cfg.ImageFormat); err != nil {
		printMiss("cache", fmt.Sprintf("%s — run 'modgrid sync'", cfg.CacheDir))
	} else {
		printOK("cache", fmt.Sprintf("%d screenshot(s) under %s", n, cfg.CacheDir))
	}

	doc, err := index.Load(cfg.IndexFile)
	switch {
	case err == nil:
		info, _ := os.Stat(cfg.IndexFile)
		printOK("index", fmt.Sprintf("%d row(s) in %s (%s old)", len(doc.Data), cfg.IndexFile, age(info.ModTime())))
	case errors.Is(err, fs.ErrNotExist):
		printMiss("index", fmt.Sprintf("%s — run 'modgrid index'", cfg.IndexFile))
	default:
		printErr("index", err.Error())
	}

	return nil
}

// countFiles counts files with the given extension under root, recursively.
func countFiles(root, ext string) (int, error) {
	if _, err := os.Stat(root); err != nil {
		return 0, err
	}
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			n++
		}
		return nil
	})
	return n, err
}

// age renders how long ago t was, coarsely.
func age(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "moments"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
