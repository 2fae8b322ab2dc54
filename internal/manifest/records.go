package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteRecords writes the normalized module list to path, indented. The file
// is a diagnostic-friendly intermediate artifact; the compact form is only
// applied to the final search index.
func WriteRecords(path string, records []ModuleRecord) error {
	if records == nil {
		records = []ModuleRecord{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("cannot marshal module records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write module list %s: %w", path, err)
	}
	return nil
}

// LoadRecords reads a normalized module list written by WriteRecords.
// Failure here is fatal to the caller: every downstream stage depends on it.
func LoadRecords(path string) ([]ModuleRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read module list %s: %w", path, err)
	}
	var records []ModuleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid module list JSON %s: %w", path, err)
	}
	return records, nil
}
