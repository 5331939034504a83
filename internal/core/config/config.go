// Package config loads the `[tool.ivrit]` section of a project's
// pyproject.toml and carries the command line settings next to it.
package config

import (
	"time"

	"ivrit/internal/engine/unmatched"
)

const (
	DefaultFileName = "pyproject.toml"
	DefaultJobs     = 1
	DefaultDebounce = 300 * time.Millisecond
	DefaultRate     = 20.0
	DefaultBurst    = 40
)

type Config struct {
	// Names maps a parameter name to the fully qualified type it implies.
	Names           map[string]string `toml:"names"`
	IgnoreNames     []string          `toml:"ignore_names"`
	IgnoreFilenames []string          `toml:"ignore_filenames"`
	ExcludeDirs     []string          `toml:"exclude_dirs"`
	ExcludeFiles    []string          `toml:"exclude_files"`
	ReportTop       int               `toml:"report_top"`
	ReportThreshold float64           `toml:"report_threshold"`
	Watch           Watch             `toml:"watch"`

	// Set from the command line, never from the file.
	Root        string `toml:"-"`
	Path        string `toml:"-"`
	Jobs        int    `toml:"-"`
	Format      string `toml:"-"`
	MetricsAddr string `toml:"-"`
	// TraceEndpoint is an OTLP/gRPC collector address; empty disables tracing.
	TraceEndpoint string `toml:"-"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// Rate and Burst bound how many files per second watch mode regenerates.
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type pyproject struct {
	Tool struct {
		Ivrit Config `toml:"ivrit"`
	} `toml:"tool"`
}

// Default returns the configuration used when no settings file applies.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, nil)
	return cfg
}

func applyDefaults(cfg *Config, defined func(key ...string) bool) {
	isDefined := func(key string) bool {
		return defined != nil && defined("tool", "ivrit", key)
	}

	if cfg.Names == nil {
		cfg.Names = make(map[string]string)
	}
	if !isDefined("report_top") {
		cfg.ReportTop = unmatched.DefaultTop
	}
	if !isDefined("report_threshold") {
		cfg.ReportThreshold = unmatched.DefaultThreshold
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Watch.Rate <= 0 {
		cfg.Watch.Rate = DefaultRate
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = DefaultBurst
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = DefaultJobs
	}
}

// IgnoredNames returns IgnoreNames as a set.
func (c *Config) IgnoredNames() map[string]bool {
	return toSet(c.IgnoreNames)
}

// IgnoredFilenames returns IgnoreFilenames as a set.
func (c *Config) IgnoredFilenames() map[string]bool {
	return toSet(c.IgnoreFilenames)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
