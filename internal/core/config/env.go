package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides applies IVRIT_* environment overrides on top of the file
// settings.
func ApplyEnvOverrides(cfg *Config) {
	setEnvInt(&cfg.ReportTop, "IVRIT_REPORT_TOP")
	setEnvFloat64(&cfg.ReportThreshold, "IVRIT_REPORT_THRESHOLD")
	setEnvDuration(&cfg.Watch.Debounce, "IVRIT_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.Rate, "IVRIT_WATCH_RATE")
	setEnvInt(&cfg.Watch.Burst, "IVRIT_WATCH_BURST")
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f >= 0 {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
