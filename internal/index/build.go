package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modgrid/modgrid-cli/internal/assets"
	"github.com/modgrid/modgrid-cli/internal/imaging"
	"github.com/modgrid/modgrid-cli/internal/manifest"
	"github.com/modgrid/modgrid-cli/internal/report"
	"github.com/modgrid/modgrid-cli/internal/timestamp"
)

// progressEvery is how many rows are built between progress lines.
const progressEvery = 100

// Builder fuses module records, creation timestamps and cached screenshot
// widths into the search index document.
type Builder struct {
	cacheDir      string
	format        string
	pixelsPerUnit int
	creation      timestamp.CreationTimes
	rep           report.Reporter
}

// NewBuilder returns a Builder reading screenshots from cacheDir.
func NewBuilder(cacheDir, format string, pixelsPerUnit int, creation timestamp.CreationTimes, rep report.Reporter) *Builder {
	return &Builder{
		cacheDir:      cacheDir,
		format:        format,
		pixelsPerUnit: pixelsPerUnit,
		creation:      creation,
		rep:           rep,
	}
}

// Build produces the search index for records, preserving their order. A
// missing timestamp or an unreadable screenshot nulls only that field of
// that row.
func (b *Builder) Build(records []manifest.ModuleRecord) *Document {
	b.rep.Start("building search index")

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		ts := b.creation.For(rec.PluginSlug, rec.ModuleSlug)
		if ts == nil {
			b.rep.Warn(fmt.Sprintf("missing timestamp for %s/%s", rec.PluginSlug, rec.ModuleSlug))
		}

		rows = append(rows, Row{
			PluginSlug:  rec.PluginSlug,
			PluginName:  rec.PluginName,
			ModuleName:  rec.ModuleName,
			ModuleSlug:  rec.ModuleSlug,
			Description: rec.Description,
			Tags:        rec.Tags,
			Timestamp:   ts,
			Size:        b.moduleSize(rec),
		})

		if i%progressEvery == 0 {
			b.rep.Progress(i+1, len(records), "building search index")
		}
	}

	b.rep.Complete(fmt.Sprintf("search index built with %d modules", len(rows)))
	return &Document{Headers: Headers(), Data: rows}
}

// moduleSize derives the discrete size unit from the cached screenshot's
// pixel width, rounding up. Returns nil when the screenshot is absent or
// unreadable.
func (b *Builder) moduleSize(rec manifest.ModuleRecord) *int {
	path := assets.AssetPath(b.cacheDir, b.format, rec)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	width, err := imaging.PixelWidth(path)
	if err != nil {
		b.rep.Error(fmt.Sprintf("cannot size screenshot for %s/%s", rec.PluginSlug, rec.ModuleSlug), err)
		return nil
	}
	units := sizeUnits(width, b.pixelsPerUnit)
	return &units
}

// sizeUnits is ceil(width / pixelsPerUnit) in integer arithmetic. An exact
// multiple yields the quotient with no rounding up.
func sizeUnits(width, pixelsPerUnit int) int {
	return (width + pixelsPerUnit - 1) / pixelsPerUnit
}

// Write serializes the document to path compactly. The index is shipped to
// browsers, so no indentation.
func (d *Document) Write(path string) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("cannot marshal search index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write search index %s: %w", path, err)
	}
	return nil
}

// Load reads a search index document written by Write.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read search index %s: %w", path, err)
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid search index JSON %s: %w", path, err)
	}
	return &d, nil
}
