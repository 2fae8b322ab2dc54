package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/modgrid/modgrid-cli/internal/report"
)

// progressEvery is how many manifest files are parsed between progress lines.
const progressEvery = 50

// Ingestor discovers plugin manifests and turns them into ModuleRecords.
type Ingestor struct {
	minimumVersion string
	excluded       map[string]struct{}
	rep            report.Reporter
}

// NewIngestor returns an Ingestor applying the given plugin filters.
func NewIngestor(minimumVersion string, excludedPlugins []string, rep report.Reporter) *Ingestor {
	excluded := make(map[string]struct{}, len(excludedPlugins))
	for _, slug := range excludedPlugins {
		excluded[slug] = struct{}{}
	}
	return &Ingestor{minimumVersion: minimumVersion, excluded: excluded, rep: rep}
}

// IngestDir parses every *.json manifest beneath root and returns the
// surviving ModuleRecords in discovery order. Directory traversal order is
// implementation-defined, so record order is stable within a run but not
// across filesystems.
func (in *Ingestor) IngestDir(root string) ([]ModuleRecord, error) {
	in.rep.Start("parsing manifests")

	paths, err := discoverManifests(root)
	if err != nil {
		return nil, err
	}

	var records []ModuleRecord
	for i, path := range paths {
		records = append(records, in.ingestFile(path)...)
		if i%progressEvery == 0 {
			in.rep.Progress(i+1, len(paths), "parsing manifests")
		}
	}

	in.rep.Complete(fmt.Sprintf("parsed %d manifests, %d modules", len(paths), len(records)))
	return records, nil
}

// ingestFile parses one manifest file. A malformed or unreadable file is
// logged and contributes zero records; it never aborts the run.
func (in *Ingestor) ingestFile(path string) []ModuleRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		in.rep.Error(fmt.Sprintf("cannot read manifest %s", path), err)
		return nil
	}
	var p PluginManifest
	if err := json.Unmarshal(data, &p); err != nil {
		in.rep.Error(fmt.Sprintf("invalid JSON in %s", path), err)
		return nil
	}
	return in.extract(p)
}

// extract applies plugin-level then module-level filtering.
func (in *Ingestor) extract(p PluginManifest) []ModuleRecord {
	if versionBelowMinimum(p.Version, in.minimumVersion) {
		return nil
	}
	if _, ok := in.excluded[p.Slug]; ok {
		return nil
	}

	var out []ModuleRecord
	for _, m := range p.Modules {
		if !includeModule(m) {
			continue
		}
		tags := m.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, ModuleRecord{
			PluginName:  p.Name,
			PluginSlug:  p.Slug,
			ModuleName:  m.Name,
			ModuleSlug:  m.Slug,
			Description: m.Description,
			Tags:        tags,
		})
	}
	return out
}

// versionBelowMinimum compares plugin versions by plain string ordering, not
// semantic-version ordering. A version like "10.0.0" therefore sorts below
// "2.0.0". The upstream catalog has shipped with this rule from the start and
// its intent is unconfirmed, so the policy is kept and isolated here.
func versionBelowMinimum(version, minimum string) bool {
	return version < minimum
}

// includeModule reports whether a module belongs in the catalog.
func includeModule(m ModuleManifest) bool {
	return !m.Hidden && !m.Deprecated
}

// discoverManifests walks root recursively and returns every *.json path.
func discoverManifests(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot stat manifests directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("manifests path is not a directory: %s", root)
	}

	var paths []string
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		paths = append(paths, path)
		return nil
	}
	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("cannot scan manifests: %w", err)
	}
	return paths, nil
}
