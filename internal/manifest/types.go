package manifest

// PluginManifest is the on-disk document describing one plugin and the
// modules it ships. One JSON file per plugin, produced upstream; modgrid
// only reads the fields it consumes and validates nothing else.
type PluginManifest struct {
	Version string           `json:"version"`
	Slug    string           `json:"slug"`
	Name    string           `json:"name"`
	Modules []ModuleManifest `json:"modules"`
}

// ModuleManifest is one module entry inside a PluginManifest.
type ModuleManifest struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Hidden      bool     `json:"hidden"`
	Deprecated  bool     `json:"deprecated"`
}

// ModuleRecord is the normalized catalog entry emitted for every module that
// survives filtering. Immutable once created; downstream stages key the
// screenshot cache and the search index off (PluginSlug, ModuleSlug).
type ModuleRecord struct {
	PluginName  string   `json:"plugin_name"`
	PluginSlug  string   `json:"plugin_slug"`
	ModuleName  string   `json:"module_name"`
	ModuleSlug  string   `json:"module_slug"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
