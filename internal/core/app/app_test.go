package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ivrit/internal/core/config"
	"ivrit/internal/core/errors"
	"ivrit/internal/core/watcher"
	"ivrit/internal/shared/util"
	"ivrit/internal/ui/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newTestApp(t *testing.T, root string, names map[string]string) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Root = root
	cfg.Names = names
	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func projectFixture(t *testing.T) string {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"pkg/billing.py": "def charge(amount, user_id):\n    return amount\n",
		"pkg/cart.py":    "class Cart:\n    qty: int = 0\n",
		"pkg/plain.py":   "def ping():\n    return 1\n",
		"pkg/broken.py":  "def broken(:\n    pass\n",
		"notes.txt":      "not python",
	})
	return root
}

func TestRun_WritesStubsAndReports(t *testing.T) {
	root := projectFixture(t)
	a := newTestApp(t, root, map[string]string{"amount": "decimal.Decimal"})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Files)
	assert.Equal(t, 2, summary.Written)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Inferred)
	assert.Equal(t, 1, summary.Synthesized)
	assert.Equal(t, 1, summary.Unmatched)

	assert.Equal(t,
		"import decimal\n\ndef charge(amount: decimal.Decimal, user_id):\n    ...\n",
		readFile(t, filepath.Join(root, "pkg", "billing.pyi")))
	assert.Equal(t,
		"class Cart:\n    qty: int = 0\n\n    def __init__(self, *, qty: int = 0):\n        ...\n",
		readFile(t, filepath.Join(root, "pkg", "cart.pyi")))
	assert.NoFileExists(t, filepath.Join(root, "pkg", "plain.pyi"))
	assert.NoFileExists(t, filepath.Join(root, "pkg", "broken.pyi"))

	var buf bytes.Buffer
	require.NoError(t, a.Report(&buf, report.FormatText))
	assert.Equal(t, "user_id                   1\n", buf.String())
}

func TestRun_UnchangedFileKeepsExistingStub(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"plain.py":  "def ping():\n    return 1\n",
		"plain.pyi": "sentinel\n",
	})
	a := newTestApp(t, root, nil)

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Written)
	assert.Equal(t, "sentinel\n", readFile(t, filepath.Join(root, "plain.pyi")))
}

func TestRun_NoReportWithoutUnmatchedNames(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "def f(amount):\n    pass\n"})
	a := newTestApp(t, root, map[string]string{"amount": "decimal.Decimal"})

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.Report(&buf, report.FormatText))
	assert.Empty(t, buf.String())
}

func TestRun_ParallelJobs(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string)
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("pkg/mod_%02d.py", i)] = "def handle(amount, user_id):\n    pass\n"
	}
	writeFiles(t, root, files)

	a := newTestApp(t, root, map[string]string{"amount": "decimal.Decimal"})
	a.Config.Jobs = 4

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, summary.Files)
	assert.Equal(t, 20, summary.Written)
	assert.Equal(t, 20, a.Counter().Count("user_id"))
	assert.Equal(t, 20, a.Counter().Total())
}

func TestRun_WriteFailureAborts(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"billing.py": "def charge(amount):\n    pass\n"})
	require.NoError(t, os.Mkdir(filepath.Join(root, "billing.pyi"), 0o755))

	a := newTestApp(t, root, map[string]string{"amount": "decimal.Decimal"})
	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIO))
}

func TestRun_Cancelled(t *testing.T) {
	root := projectFixture(t)
	a := newTestApp(t, root, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"setup.py":   "def setup(amount):\n    pass\n",
		"service.py": "def pay(amount, currency):\n    pass\n",
	})
	cfg := config.Default()
	cfg.Root = root
	cfg.Names = map[string]string{"amount": "decimal.Decimal"}
	cfg.IgnoreFilenames = []string{"setup.py"}
	a, err := New(cfg)
	require.NoError(t, err)

	res, err := a.ProcessFile(context.Background(), filepath.Join(root, "service.py"))
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, filepath.Join(root, "service.pyi"), res.StubPath)
	assert.Equal(t, []string{"decimal"}, res.Imports)
	assert.Equal(t, map[string]int{"currency": 1}, res.Unmatched)

	res, err = a.ProcessFile(context.Background(), filepath.Join(root, "setup.py"))
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.NoFileExists(t, filepath.Join(root, "setup.pyi"))

	_, err = a.ProcessFile(context.Background(), filepath.Join(root, "missing.py"))
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
	reason, isolated := failureReason(err)
	assert.True(t, isolated)
	assert.Equal(t, "read", reason)
}

func TestHandleChanges(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.py": "def f(amount):\n    pass\n",
		"b.py": "def g(user_id):\n    pass\n",
	})
	a := newTestApp(t, root, nil)
	var out bytes.Buffer
	a.Out = &out

	settings := filepath.Join(root, config.DefaultFileName)
	writeFiles(t, root, map[string]string{
		config.DefaultFileName: "[tool.ivrit.names]\namount = \"decimal.Decimal\"\n",
	})

	err := a.HandleChanges(context.Background(), []string{settings, filepath.Join(root, "gone.py")}, report.FormatText)
	require.NoError(t, err)

	assert.Equal(t, "decimal.Decimal", a.Config.Names["amount"])
	assert.Equal(t, "import decimal\n\ndef f(amount: decimal.Decimal):\n    ...\n", readFile(t, filepath.Join(root, "a.pyi")))
	assert.NoFileExists(t, filepath.Join(root, "b.pyi"))
	assert.Equal(t, "user_id                   1\n", out.String())
}

func TestReloadAppliesWatchSettings(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root, nil)

	w, err := watcher.NewWatcher(time.Second, nil, nil, func([]string) {})
	require.NoError(t, err)
	defer w.Close()
	a.watcher = w
	a.limiter = util.NewLimiter(1, 1)

	writeFiles(t, root, map[string]string{
		config.DefaultFileName: "[tool.ivrit.watch]\ndebounce = \"50ms\"\nrate = 7.0\nburst = 9\n",
	})
	a.reload()

	assert.Equal(t, 50*time.Millisecond, a.Config.Watch.Debounce)
	assert.InDelta(t, 7.0, a.Config.Watch.Rate, 1e-12)
	assert.Equal(t, 9, a.Config.Watch.Burst)
	assert.Equal(t, 9, a.limiter.Burst())
	assert.Equal(t, 50*time.Millisecond, w.Debounce())
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root, map[string]string{"amount": "decimal.Decimal"})
	a.Config.Watch.Debounce = 20 * time.Millisecond
	a.Out = &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, report.FormatText) }()

	stub := filepath.Join(root, "live.pyi")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		writeFiles(t, root, map[string]string{"live.py": "def f(amount):\n    pass\n"})
		if _, err := os.Stat(stub); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	assert.FileExists(t, stub)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Names = map[string]string{"amount": "decimal.Decimal"}
	cfg.IgnoreNames = []string{"request"}
	cfg.IgnoreFilenames = []string{"setup.py"}

	policy := PolicyFromConfig(cfg)
	fq, ok := policy.Lookup("amount")
	assert.True(t, ok)
	assert.Equal(t, "decimal.Decimal", fq)
	assert.True(t, policy.IgnoresName("request"))
	assert.True(t, policy.IgnoresFile("setup.py"))

	cfg.Names["amount"] = "changed"
	fq, _ = policy.Lookup("amount")
	assert.Equal(t, "decimal.Decimal", fq)
}
