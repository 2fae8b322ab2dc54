package timestamp

import (
	"encoding/json"
	"fmt"
	"os"
)

// UnknownBuildTime is the sentinel returned when a plugin has no recorded
// build timestamp. Staleness checks treat it as "age unknown", never as
// "built just now".
const UnknownBuildTime int64 = -1

// Cache is the single shared timestamp document, keyed by plugin slug.
// Loaded once per run and never mutated; both lookup shapes below are pure
// derivations over it.
type Cache map[string]PluginTimes

// PluginTimes is one plugin's entry in the cache document. Timestamps are
// stored upstream as (possibly fractional) epoch seconds.
type PluginTimes struct {
	BuildTimestamp *float64               `json:"buildTimestamp"`
	Modules        map[string]ModuleTimes `json:"modules"`
}

// ModuleTimes is one module's entry under a plugin.
type ModuleTimes struct {
	CreationTimestamp *float64 `json:"creationTimestamp"`
}

// Load reads the cache document at path. Callers choose how to degrade:
// the asset-sync path tolerates failure with an empty cache, while index
// building treats it as fatal.
func Load(path string) (Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read timestamp cache %s: %w", path, err)
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid timestamp cache JSON %s: %w", path, err)
	}
	return c, nil
}

// BuildTimes maps plugin slug to build time in epoch seconds.
type BuildTimes map[string]int64

// CreationTimes maps plugin slug to module slug to creation time. A nil
// entry means the module has no recorded creation time.
type CreationTimes map[string]map[string]*int64

// BuildTimes derives the flat per-plugin build-time lookup. Plugins without
// a buildTimestamp field carry UnknownBuildTime.
func (c Cache) BuildTimes() BuildTimes {
	out := make(BuildTimes, len(c))
	for slug, p := range c {
		if p.BuildTimestamp == nil {
			out[slug] = UnknownBuildTime
			continue
		}
		out[slug] = int64(*p.BuildTimestamp)
	}
	return out
}

// CreationTimes derives the nested per-plugin-per-module creation lookup.
func (c Cache) CreationTimes() CreationTimes {
	out := make(CreationTimes, len(c))
	for slug, p := range c {
		modules := make(map[string]*int64, len(p.Modules))
		for mslug, m := range p.Modules {
			if m.CreationTimestamp == nil {
				modules[mslug] = nil
				continue
			}
			v := int64(*m.CreationTimestamp)
			modules[mslug] = &v
		}
		out[slug] = modules
	}
	return out
}

// For returns the build time for a plugin, or UnknownBuildTime when the
// plugin is absent.
func (b BuildTimes) For(pluginSlug string) int64 {
	if t, ok := b[pluginSlug]; ok {
		return t
	}
	return UnknownBuildTime
}

// For returns the creation time for a module, or nil when the plugin, its
// module map, or the module itself is absent.
func (c CreationTimes) For(pluginSlug, moduleSlug string) *int64 {
	modules, ok := c[pluginSlug]
	if !ok {
		return nil
	}
	return modules[moduleSlug]
}
