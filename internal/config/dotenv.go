package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DotEnvPath returns the absolute path to modgrid's dotenv file (~/.modgrid/.env).
func DotEnvPath() (string, error) {
	dir, err := ModgridDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// LoadDotEnv reads ~/.modgrid/.env and returns key/value pairs.
//
// Parsing rules:
// - Lines starting with '#' are ignored.
// - Empty lines are ignored.
// - Lines must be of form KEY=VALUE.
// - Whitespace around KEY is trimmed.
// - VALUE is taken as-is (no quote parsing).
func LoadDotEnv() (map[string]string, error) {
	p, err := DotEnvPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot open dotenv file %s: %w", p, err)
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:i])
		v := line[i+1:]
		if k == "" {
			continue
		}
		out[k] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", p, err)
	}
	return out, nil
}

// GetConfigValue returns the effective value for key, using process environment
// variables first and falling back to ~/.modgrid/.env.
func GetConfigValue(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	dotenv, err := LoadDotEnv()
	if err != nil {
		return "", err
	}
	return dotenv[key], nil
}

// applyOverrides patches cfg with any MODGRID_* values set in the process
// environment or ~/.modgrid/.env. Environment wins over dotenv; dotenv wins
// over modgrid.yaml.
func applyOverrides(cfg *Config) error {
	stringFields := map[string]*string{
		"MODGRID_MANIFESTS_DIR":   &cfg.ManifestsDir,
		"MODGRID_TIMESTAMP_CACHE": &cfg.TimestampCache,
		"MODGRID_CACHE_DIR":       &cfg.CacheDir,
		"MODGRID_MODULES_FILE":    &cfg.ModulesFile,
		"MODGRID_INDEX_FILE":      &cfg.IndexFile,
		"MODGRID_BASE_URL":        &cfg.BaseURL,
		"MODGRID_IMAGE_FORMAT":    &cfg.ImageFormat,
		"MODGRID_MIN_VERSION":     &cfg.MinimumVersion,
	}
	for key, dst := range stringFields {
		v, err := GetConfigValue(key)
		if err != nil {
			return err
		}
		if v != "" {
			*dst = v
		}
	}

	intFields := map[string]*int{
		"MODGRID_REQUEST_TIMEOUT_SECS": &cfg.RequestTimeoutSecs,
		"MODGRID_DOWNLOAD_DELAY_MS":    &cfg.DownloadDelayMS,
		"MODGRID_CACHE_EXPIRY_DAYS":    &cfg.CacheExpiryDays,
		"MODGRID_WORKERS":              &cfg.Workers,
		"MODGRID_PIXELS_PER_UNIT":      &cfg.PixelsPerUnit,
	}
	for key, dst := range intFields {
		v, err := GetConfigValue(key)
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, v)
		}
		*dst = n
	}
	return nil
}
