package config

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

func validate(cfg *Config) error {
	var errs []error
	if cfg.ReportTop < 0 {
		errs = append(errs, fmt.Errorf("report_top must be >= 0, got %d", cfg.ReportTop))
	}
	if cfg.ReportThreshold < 0 || cfg.ReportThreshold > 1 {
		errs = append(errs, fmt.Errorf("report_threshold must be in [0, 1], got %g", cfg.ReportThreshold))
	}
	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must be > 0, got %s", cfg.Watch.Debounce))
	}
	if cfg.Watch.Rate <= 0 {
		errs = append(errs, fmt.Errorf("watch.rate must be > 0, got %g", cfg.Watch.Rate))
	}
	if cfg.Watch.Burst < 1 {
		errs = append(errs, fmt.Errorf("watch.burst must be >= 1, got %d", cfg.Watch.Burst))
	}
	errs = append(errs, validateGlobs("exclude_dirs", cfg.ExcludeDirs)...)
	errs = append(errs, validateGlobs("exclude_files", cfg.ExcludeFiles)...)
	return errors.Join(errs...)
}

func validateGlobs(key string, patterns []string) []error {
	var errs []error
	for i, pattern := range patterns {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d] %q: %w", key, i, pattern, err))
		}
	}
	return errs
}
