package index

import (
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modgrid/modgrid-cli/internal/manifest"
	"github.com/modgrid/modgrid-cli/internal/report"
	"github.com/modgrid/modgrid-cli/internal/timestamp"
)

func writeScreenshot(t *testing.T, cacheDir string, rec manifest.ModuleRecord, width int) {
	t.Helper()
	dir := filepath.Join(cacheDir, rec.PluginSlug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, rec.ModuleSlug+".png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, 64))); err != nil {
		t.Fatal(err)
	}
}

func creationFor(plugin, module string, ts int64) timestamp.CreationTimes {
	return timestamp.CreationTimes{plugin: {module: &ts}}
}

func TestSizeUnits(t *testing.T) {
	tests := []struct {
		width, ppu, want int
	}{
		{31, 15, 3},  // rounds up
		{30, 15, 2},  // exact multiple, no rounding
		{1, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
	}
	for _, tt := range tests {
		if got := sizeUnits(tt.width, tt.ppu); got != tt.want {
			t.Errorf("sizeUnits(%d, %d) = %d, want %d", tt.width, tt.ppu, got, tt.want)
		}
	}
}

func TestBuild_RoundTripWithImageAndTimestamp(t *testing.T) {
	cache := t.TempDir()
	rec := manifest.ModuleRecord{
		PluginSlug: "Plug", PluginName: "Plug Co",
		ModuleSlug: "Osc", ModuleName: "Oscillator",
		Description: "Makes waves", Tags: []string{"VCO"},
	}
	writeScreenshot(t, cache, rec, 45)

	b := NewBuilder(cache, "png", 15, creationFor("Plug", "Osc", 1600000000), &report.Recorder{})
	doc := b.Build([]manifest.ModuleRecord{rec})

	if len(doc.Data) != 1 {
		t.Fatalf("expected 1 row, got %d", len(doc.Data))
	}
	row := doc.Data[0]
	if row.Size == nil || *row.Size != 3 {
		t.Errorf("size: got %v, want 3", row.Size)
	}
	if row.Timestamp == nil || *row.Timestamp != 1600000000 {
		t.Errorf("timestamp: got %v", row.Timestamp)
	}
	if row.PluginSlug != "Plug" || row.ModuleName != "Oscillator" {
		t.Errorf("metadata mismatch: %+v", row)
	}
}

func TestBuild_MissingImageAndTimestampAreIndependent(t *testing.T) {
	cache := t.TempDir()
	withImage := manifest.ModuleRecord{PluginSlug: "A", ModuleSlug: "m1"}
	withoutImage := manifest.ModuleRecord{PluginSlug: "B", ModuleSlug: "m2"}
	writeScreenshot(t, cache, withImage, 30)

	// Only B/m2 has a creation time; only A/m1 has a screenshot.
	b := NewBuilder(cache, "png", 15, creationFor("B", "m2", 1500000000), &report.Recorder{})
	doc := b.Build([]manifest.ModuleRecord{withImage, withoutImage})

	first, second := doc.Data[0], doc.Data[1]
	if first.Size == nil || *first.Size != 2 {
		t.Errorf("row 1 size: got %v", first.Size)
	}
	if first.Timestamp != nil {
		t.Errorf("row 1 timestamp should be nil, got %v", first.Timestamp)
	}
	if second.Size != nil {
		t.Errorf("row 2 size should be nil, got %v", second.Size)
	}
	if second.Timestamp == nil || *second.Timestamp != 1500000000 {
		t.Errorf("row 2 timestamp: got %v", second.Timestamp)
	}
}

func TestBuild_UnreadableImageNullsSizeOnly(t *testing.T) {
	cache := t.TempDir()
	rec := manifest.ModuleRecord{PluginSlug: "P", ModuleSlug: "m"}
	if err := os.MkdirAll(filepath.Join(cache, "P"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cache, "P", "m.png"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	recOut := &report.Recorder{}
	b := NewBuilder(cache, "png", 15, creationFor("P", "m", 42), recOut)
	doc := b.Build([]manifest.ModuleRecord{rec})

	if doc.Data[0].Size != nil {
		t.Errorf("size should be nil for garbage image, got %v", doc.Data[0].Size)
	}
	if doc.Data[0].Timestamp == nil {
		t.Error("timestamp should survive the bad image")
	}
	if recOut.Count("error") != 1 {
		t.Errorf("expected one reported error, got %d", recOut.Count("error"))
	}
}

func TestRowJSON_PositionalAndNullable(t *testing.T) {
	ts := int64(1600000000)
	size := 8
	row := Row{
		PluginSlug: "p", PluginName: "P", ModuleName: "M", ModuleSlug: "m",
		Description: "d", Tags: []string{"x"}, Timestamp: &ts, Size: &size,
	}
	b, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	want := `["p","P","M","m","d",["x"],1600000000,8]`
	if string(b) != want {
		t.Errorf("row JSON:\n got %s\nwant %s", b, want)
	}

	nullRow := Row{PluginSlug: "p", Tags: []string{}}
	b, err = json.Marshal(nullRow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(b), `null,null]`) {
		t.Errorf("nil fields must serialize as null: %s", b)
	}
}

func TestDocumentWriteLoad_CompactRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search_index.json")
	ts := int64(7)
	doc := &Document{
		Headers: Headers(),
		Data: []Row{
			{PluginSlug: "p", PluginName: "P", ModuleName: "M", ModuleSlug: "m", Tags: []string{}, Timestamp: &ts},
		},
	}
	if err := doc.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "\n") || strings.Contains(string(raw), "  ") {
		t.Error("index document must be written compactly")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Headers) != 8 || got.Headers[0] != "plugin_slug" || got.Headers[7] != "size" {
		t.Errorf("headers mismatch: %v", got.Headers)
	}
	if len(got.Data) != 1 || got.Data[0].ModuleSlug != "m" {
		t.Errorf("data mismatch: %+v", got.Data)
	}
	if got.Data[0].Timestamp == nil || *got.Data[0].Timestamp != 7 {
		t.Errorf("timestamp mismatch: %v", got.Data[0].Timestamp)
	}
	if got.Data[0].Size != nil {
		t.Errorf("size should round-trip as nil, got %v", got.Data[0].Size)
	}
}

func TestBuild_PreservesRecordOrder(t *testing.T) {
	var records []manifest.ModuleRecord
	for _, m := range []string{"z", "a", "q", "b"} {
		records = append(records, manifest.ModuleRecord{PluginSlug: "P", ModuleSlug: m})
	}
	b := NewBuilder(t.TempDir(), "png", 15, timestamp.CreationTimes{}, &report.Recorder{})
	doc := b.Build(records)

	for i, rec := range records {
		if doc.Data[i].ModuleSlug != rec.ModuleSlug {
			t.Fatalf("row %d out of order: got %q want %q", i, doc.Data[i].ModuleSlug, rec.ModuleSlug)
		}
	}
}
