package cmd

import (
	"context"
	"fmt"

	"github.com/modgrid/modgrid-cli/internal/assets"
	"github.com/modgrid/modgrid-cli/internal/config"
	"github.com/modgrid/modgrid-cli/internal/index"
	"github.com/modgrid/modgrid-cli/internal/manifest"
	"github.com/modgrid/modgrid-cli/internal/report"
	"github.com/modgrid/modgrid-cli/internal/timestamp"
)

// ── Pipeline stage helpers ────────────────────────────────────────────────────
// Each subcommand wraps exactly one of these; `modgrid build` chains them.
// They take an explicit Config and Reporter so tests can drive them without
// touching the user's home directory state beyond what the Config points at.

// ingestModules parses every manifest under cfg.ManifestsDir and persists
// the normalized module list.
func ingestModules(cfg *config.Config, rep report.Reporter) ([]manifest.ModuleRecord, error) {
	in := manifest.NewIngestor(cfg.MinimumVersion, cfg.ExcludedPlugins, rep)
	records, err := in.IngestDir(cfg.ManifestsDir)
	if err != nil {
		return nil, err
	}
	if err := manifest.WriteRecords(cfg.ModulesFile, records); err != nil {
		return nil, err
	}
	return records, nil
}

// syncAssets mirrors screenshots for records into the local cache. A broken
// or missing timestamp cache only disables the staleness shortcut; the sync
// still runs, probing sizes for every cached asset.
func syncAssets(ctx context.Context, cfg *config.Config, rep report.Reporter, records []manifest.ModuleRecord) (*assets.Synchronizer, error) {
	var build timestamp.BuildTimes
	if cache, err := timestamp.Load(cfg.TimestampCache); err != nil {
		rep.Warn(fmt.Sprintf("timestamp cache unavailable, treating every plugin's age as unknown: %v", err))
		build = timestamp.BuildTimes{}
	} else {
		build = cache.BuildTimes()
	}

	s := assets.NewSynchronizer(assets.Options{
		BaseURL:    cfg.BaseURL,
		Format:     cfg.ImageFormat,
		CacheDir:   cfg.CacheDir,
		Timeout:    cfg.RequestTimeout(),
		Delay:      cfg.DownloadDelay(),
		ExpiryDays: cfg.CacheExpiryDays,
		Workers:    cfg.Workers,
	}, build, rep)

	if err := s.SyncAll(ctx, records); err != nil {
		return nil, err
	}
	return s, nil
}

// buildSearchIndex fuses records with creation timestamps and screenshot
// widths, then writes the search index. Unlike syncAssets, a missing
// timestamp cache is fatal here: the index would silently lose a whole
// column.
func buildSearchIndex(cfg *config.Config, rep report.Reporter, records []manifest.ModuleRecord) (*index.Document, error) {
	cache, err := timestamp.Load(cfg.TimestampCache)
	if err != nil {
		return nil, err
	}

	b := index.NewBuilder(cfg.CacheDir, cfg.ImageFormat, cfg.PixelsPerUnit, cache.CreationTimes(), rep)
	doc := b.Build(records)
	if err := doc.Write(cfg.IndexFile); err != nil {
		return nil, err
	}
	return doc, nil
}
