package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modgrid/modgrid-cli/internal/report"
)

func writeManifest(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestIngestor(excluded ...string) (*Ingestor, *report.Recorder) {
	rec := &report.Recorder{}
	return NewIngestor("2.0.0", excluded, rec), rec
}

func TestIngestDir_VersionBelowMinimum(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "old.json", `{
		"version": "1.9.0", "slug": "OldPlugin", "name": "Old",
		"modules": [{"slug": "m1", "name": "M1"}]
	}`)

	in, _ := newTestIngestor()
	records, err := in.IngestDir(dir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected zero records for below-minimum version, got %d", len(records))
	}
}

func TestVersionBelowMinimum_PlainStringOrdering(t *testing.T) {
	tests := []struct {
		version, minimum string
		want             bool
	}{
		{"1.9.0", "2.0.0", true},
		{"2.0.0", "2.0.0", false},
		{"2.1.0", "2.0.0", false},
		// Lexicographic quirk kept on purpose: "10" sorts below "2".
		{"10.0.0", "2.0.0", true},
	}
	for _, tt := range tests {
		if got := versionBelowMinimum(tt.version, tt.minimum); got != tt.want {
			t.Errorf("versionBelowMinimum(%q, %q) = %v, want %v", tt.version, tt.minimum, got, tt.want)
		}
	}
}

func TestIngestDir_ExcludedPlugin(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "banned.json", `{
		"version": "2.5.0", "slug": "BannedPlugin", "name": "Banned",
		"modules": [{"slug": "m1", "name": "M1"}]
	}`)

	in, _ := newTestIngestor("BannedPlugin")
	records, err := in.IngestDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("excluded plugin produced %d records", len(records))
	}
}

func TestIngestDir_HiddenAndDeprecatedFiltered(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "plugin.json", `{
		"version": "2.1.0", "slug": "Plug", "name": "Plug",
		"modules": [
			{"slug": "visible", "name": "Visible"},
			{"slug": "ghost", "name": "Ghost", "hidden": true},
			{"slug": "relic", "name": "Relic", "deprecated": true}
		]
	}`)

	in, _ := newTestIngestor()
	records, err := in.IngestDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ModuleSlug != "visible" {
		t.Errorf("wrong survivor: %q", records[0].ModuleSlug)
	}
}

func TestIngestDir_TagsDefaultToEmpty(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "plugin.json", `{
		"version": "2.1.0", "slug": "Plug", "name": "Plug",
		"modules": [{"slug": "m", "name": "M"}]
	}`)

	in, _ := newTestIngestor()
	records, err := in.IngestDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Tags == nil || len(records[0].Tags) != 0 {
		t.Fatalf("tags should default to an empty slice, got %#v", records[0].Tags)
	}
}

func TestIngestDir_MalformedManifestSkipped(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "broken.json", `{not json at all`)
	writeManifest(t, dir, "good.json", `{
		"version": "2.1.0", "slug": "Good", "name": "Good",
		"modules": [{"slug": "m", "name": "M"}]
	}`)

	in, rec := newTestIngestor()
	records, err := in.IngestDir(dir)
	if err != nil {
		t.Fatalf("run should survive a bad manifest: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record from the good manifest, got %d", len(records))
	}
	if rec.Count("error") != 1 {
		t.Errorf("expected 1 reported error, got %d", rec.Count("error"))
	}
}

func TestIngestDir_RecursiveDiscovery(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, nested, "deep.json", `{
		"version": "2.1.0", "slug": "Deep", "name": "Deep",
		"modules": [{"slug": "m", "name": "M"}]
	}`)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	in, _ := newTestIngestor()
	records, err := in.IngestDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("nested manifest not discovered: %d records", len(records))
	}
}

func TestIngestDir_MissingRoot(t *testing.T) {
	in, _ := newTestIngestor()
	if _, err := in.IngestDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing manifests directory")
	}
}

// The two-plugin scenario from the pipeline contract: one plugin below the
// minimum version, one passing with a hidden and a visible module.
func TestIngestDir_EndToEndScenario(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "older.json", `{
		"version": "1.9.0", "slug": "Older", "name": "Older",
		"modules": [{"slug": "m1", "name": "M1"}, {"slug": "m2", "name": "M2"}]
	}`)
	writeManifest(t, dir, "newer.json", `{
		"version": "2.1.0", "slug": "Newer", "name": "Newer",
		"modules": [
			{"slug": "shy", "name": "Shy", "hidden": true},
			{"slug": "star", "name": "Star", "tags": ["VCO"], "description": "An oscillator"}
		]
	}`)

	in, _ := newTestIngestor()
	records, err := in.IngestDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one surviving module, got %d", len(records))
	}
	r := records[0]
	if r.PluginSlug != "Newer" || r.ModuleSlug != "star" {
		t.Errorf("wrong record: %+v", r)
	}
	if r.Description != "An oscillator" || len(r.Tags) != 1 || r.Tags[0] != "VCO" {
		t.Errorf("metadata not carried through: %+v", r)
	}
}

func TestWriteLoadRecords_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modules.json")
	records := []ModuleRecord{
		{PluginName: "P", PluginSlug: "p", ModuleName: "M", ModuleSlug: "m", Tags: []string{"VCA"}},
	}
	if err := WriteRecords(path, records); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	got, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(got) != 1 || got[0].ModuleSlug != "m" || len(got[0].Tags) != 1 || got[0].Tags[0] != "VCA" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadRecords_MissingFileIsError(t *testing.T) {
	if _, err := LoadRecords(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing module list")
	}
}
