package index

import "encoding/json"

// Headers is the fixed column order of the search index document. Client-side
// search addresses row fields by these positions, so the order never changes.
func Headers() []string {
	return []string{
		"plugin_slug",
		"plugin_name",
		"module_name",
		"module_slug",
		"description",
		"tags",
		"timestamp",
		"size",
	}
}

// Row is one module's entry in the search index. Timestamp and Size are
// nullable: nil means "unknown", which is distinct from zero and serialized
// as JSON null.
type Row struct {
	PluginSlug  string
	PluginName  string
	ModuleName  string
	ModuleSlug  string
	Description string
	Tags        []string
	Timestamp   *int64
	Size        *int
}

// MarshalJSON serializes the row as a positional array matching Headers.
func (r Row) MarshalJSON() ([]byte, error) {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal([]any{
		r.PluginSlug, r.PluginName, r.ModuleName, r.ModuleSlug,
		r.Description, tags, r.Timestamp, r.Size,
	})
}

// UnmarshalJSON restores a row from its positional array form.
func (r *Row) UnmarshalJSON(data []byte) error {
	fields := []any{
		&r.PluginSlug, &r.PluginName, &r.ModuleName, &r.ModuleSlug,
		&r.Description, &r.Tags, &r.Timestamp, &r.Size,
	}
	return json.Unmarshal(data, &fields)
}

// Document is the complete search index: a header list plus one positional
// row per module, in module discovery order.
type Document struct {
	Headers []string `json:"headers"`
	Data    []Row    `json:"data"`
}
