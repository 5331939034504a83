package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePyproject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writePyproject(t, `
[project]
name = "shop"

[tool.black]
line-length = 100

[tool.ivrit]
ignore_names = ["request", " ctx "]
ignore_filenames = ["setup.py"]
exclude_dirs = ["node_modules", ".venv"]
exclude_files = ["*_pb2.py"]
report_top = 10
report_threshold = 0.1

[tool.ivrit.names]
amount = "decimal.Decimal"
user_id = " uuid.UUID "
blank = ""

[tool.ivrit.watch]
debounce = "1s"
rate = 5.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, map[string]string{
		"amount":  "decimal.Decimal",
		"user_id": "uuid.UUID",
		"blank":   "",
	}, cfg.Names)
	assert.Equal(t, []string{"request", "ctx"}, cfg.IgnoreNames)
	assert.Equal(t, map[string]bool{"setup.py": true}, cfg.IgnoredFilenames())
	assert.Equal(t, []string{"node_modules", ".venv"}, cfg.ExcludeDirs)
	assert.Equal(t, []string{"*_pb2.py"}, cfg.ExcludeFiles)
	assert.Equal(t, 10, cfg.ReportTop)
	assert.InDelta(t, 0.1, cfg.ReportThreshold, 1e-12)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.InDelta(t, 5.0, cfg.Watch.Rate, 1e-12)
	assert.Equal(t, DefaultBurst, cfg.Watch.Burst)
	assert.Equal(t, DefaultJobs, cfg.Jobs)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writePyproject(t, "[project]\nname = \"shop\"\n"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Names)
	assert.NotNil(t, cfg.Names)
	assert.Equal(t, 40, cfg.ReportTop)
	assert.InDelta(t, 0.05, cfg.ReportThreshold, 1e-12)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
}

func TestLoadExplicitZeroThreshold(t *testing.T) {
	cfg, err := Load(writePyproject(t, "[tool.ivrit]\nreport_threshold = 0.0\nreport_top = 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.ReportThreshold)
	assert.Zero(t, cfg.ReportTop)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writePyproject(t, "bad = toml = format"))
	assert.Error(t, err)

	_, err = Load(writePyproject(t, "[tool.ivrit]\nreport_threshold = 2.0\n"))
	assert.ErrorContains(t, err, "report_threshold")

	_, err = Load(writePyproject(t, "[tool.ivrit]\nexclude_files = [\"[unclosed\"]\n"))
	assert.ErrorContains(t, err, "exclude_files[0]")
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	for name, path := range map[string]string{
		"Missing":   filepath.Join(t.TempDir(), DefaultFileName),
		"Malformed": writePyproject(t, "[tool.ivrit\nnames = 3"),
		"WrongType": writePyproject(t, "[tool.ivrit]\nnames = [\"amount\"]\n"),
	} {
		t.Run(name, func(t *testing.T) {
			cfg := LoadOrDefault(path)
			require.NotNil(t, cfg)
			assert.Empty(t, cfg.Names)
			assert.Equal(t, path, cfg.Path)
			assert.Equal(t, 40, cfg.ReportTop)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IVRIT_REPORT_TOP", "5")
	t.Setenv("IVRIT_REPORT_THRESHOLD", "0.2")
	t.Setenv("IVRIT_WATCH_DEBOUNCE", "2s")
	t.Setenv("IVRIT_WATCH_BURST", "not-a-number")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, 5, cfg.ReportTop)
	assert.InDelta(t, 0.2, cfg.ReportThreshold, 1e-12)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, DefaultBurst, cfg.Watch.Burst)
}

func TestLoadOrDefaultRejectsInvalidEnvOverrides(t *testing.T) {
	path := writePyproject(t, "[tool.ivrit]\nreport_threshold = 0.1\n")

	t.Run("OutOfRange", func(t *testing.T) {
		t.Setenv("IVRIT_REPORT_THRESHOLD", "3")
		t.Setenv("IVRIT_REPORT_TOP", "7")
		cfg := LoadOrDefault(path)
		assert.InDelta(t, 0.1, cfg.ReportThreshold, 1e-12)
		assert.Equal(t, 40, cfg.ReportTop)
	})

	t.Run("ZeroBurst", func(t *testing.T) {
		t.Setenv("IVRIT_WATCH_BURST", "0")
		cfg := LoadOrDefault(path)
		assert.Equal(t, DefaultBurst, cfg.Watch.Burst)
	})

	t.Run("Valid", func(t *testing.T) {
		t.Setenv("IVRIT_REPORT_THRESHOLD", "1")
		cfg := LoadOrDefault(path)
		assert.InDelta(t, 1.0, cfg.ReportThreshold, 1e-12)
	})
}

func TestResolveRelative(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "srv", "app")
	assert.Equal(t, filepath.Join(base, "pyproject.toml"), ResolveRelative(base, "pyproject.toml"))
	assert.Equal(t, base, ResolveRelative(base, "  "))

	abs := filepath.Join(string(filepath.Separator), "etc", "ivrit.toml")
	assert.Equal(t, abs, ResolveRelative(base, abs))
}
