package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.modgrid/modgrid.yaml.
// Every field that affects pipeline behavior lives here so a deployment can
// override it without touching code.
type Config struct {
	// Input locations.
	ManifestsDir   string `yaml:"manifests_dir"`
	TimestampCache string `yaml:"timestamp_cache"`

	// Output locations.
	CacheDir    string `yaml:"cache_dir"`
	ModulesFile string `yaml:"modules_file"`
	IndexFile   string `yaml:"index_file"`

	// Remote asset host.
	BaseURL     string `yaml:"base_url"`
	ImageFormat string `yaml:"image_format"`

	// Ingestion filtering.
	MinimumVersion  string   `yaml:"minimum_version"`
	ExcludedPlugins []string `yaml:"excluded_plugins,omitempty"`

	// Network and cache policy.
	RequestTimeoutSecs int `yaml:"request_timeout_secs"`
	DownloadDelayMS    int `yaml:"download_delay_ms"`
	CacheExpiryDays    int `yaml:"cache_expiry_days"`
	Workers            int `yaml:"workers,omitempty"`

	// Index geometry: screenshot pixels that correspond to one size unit.
	PixelsPerUnit int `yaml:"pixels_per_unit"`
}

// RequestTimeout returns the per-request timeout as a Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// DownloadDelay returns the inter-download delay as a Duration.
func (c *Config) DownloadDelay() time.Duration {
	return time.Duration(c.DownloadDelayMS) * time.Millisecond
}

// ModgridDir returns the absolute path to ~/.modgrid/.
func ModgridDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".modgrid"), nil
}

// ConfigPath returns the absolute path to ~/.modgrid/modgrid.yaml.
func ConfigPath() (string, error) {
	dir, err := ModgridDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "modgrid.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first modgrid init.
// Values mirror the reference deployment of the catalog pipeline.
func DefaultConfig() (*Config, error) {
	dir, err := ModgridDir()
	if err != nil {
		return nil, err
	}
	j := func(parts ...string) string { return filepath.Join(append([]string{dir}, parts...)...) }

	return &Config{
		ManifestsDir:   j("library", "manifests"),
		TimestampCache: j("library", "manifests-cache.json"),
		CacheDir:       j("cache"),
		ModulesFile:    j("modules.json"),
		IndexFile:      j("search_index.json"),

		BaseURL:     "https://library.vcvrack.com/screenshots/100",
		ImageFormat: "webp",

		MinimumVersion:  "2.0.0",
		ExcludedPlugins: []string{"KRTPluginA"},

		RequestTimeoutSecs: 10,
		DownloadDelayMS:    100,
		CacheExpiryDays:    2,
		Workers:            1,

		PixelsPerUnit: 15,
	}, nil
}

// Load reads ~/.modgrid/modgrid.yaml and applies dotenv/env overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	// Expand ~ in every path field at load time.
	for _, p := range []*string{
		&cfg.ManifestsDir, &cfg.TimestampCache, &cfg.CacheDir,
		&cfg.ModulesFile, &cfg.IndexFile,
	} {
		*p, err = ExpandPath(*p)
		if err != nil {
			return nil, err
		}
	}
	if err := applyOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.modgrid/modgrid.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
