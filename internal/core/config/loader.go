package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads the `[tool.ivrit]` section of the pyproject file at path. A
// file without the section yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc pyproject
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg := doc.Tool.Ivrit
	applyDefaults(&cfg, meta.IsDefined)
	normalize(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return &cfg, nil
}

// LoadOrDefault is Load with every failure mapped to the defaults. Missing or
// malformed settings never stop a run. Environment overrides that would make
// the settings invalid are ignored as a whole.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		slog.Debug("using default settings", "path", path, "error", err)
		cfg = Default()
		cfg.Path = path
	}

	overridden := *cfg
	ApplyEnvOverrides(&overridden)
	if err := validate(&overridden); err != nil {
		slog.Warn("ignoring environment overrides", "error", err)
		return cfg
	}
	return &overridden
}

func normalize(cfg *Config) {
	names := make(map[string]string, len(cfg.Names))
	for name, typ := range cfg.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names[name] = strings.TrimSpace(typ)
	}
	cfg.Names = names
	cfg.IgnoreNames = trimAll(cfg.IgnoreNames)
	cfg.IgnoreFilenames = trimAll(cfg.IgnoreFilenames)
	cfg.ExcludeDirs = trimAll(cfg.ExcludeDirs)
	cfg.ExcludeFiles = trimAll(cfg.ExcludeFiles)
}

func trimAll(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
