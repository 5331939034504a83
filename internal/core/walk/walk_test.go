package walk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func fixture(t *testing.T) string {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeTree(t, root, map[string]string{
		".gitignore":              "build/\n*_generated.py\n",
		"app/main.py":             "",
		"app/models.py":           "",
		"app/models.pyi":          "",
		"app/schema_generated.py": "",
		"app/api/.gitignore":      "local.py\n",
		"app/api/local.py":        "",
		"app/api/views.py":        "",
		"build/lib/copy.py":       "",
		".git/hooks/hook.py":      "",
		"node_modules/pkg/x.py":   "",
		"proto/user_pb2.py":       "",
		"setup.py":                "",
		"README.md":               "",
	})
	return root
}

func TestFiles(t *testing.T) {
	root := fixture(t)
	w, err := New(root, Options{
		ExcludeDirs:     []string{"node_modules"},
		ExcludeFiles:    []string{"*_pb2.py"},
		IgnoreFilenames: map[string]bool{"setup.py": true},
	})
	require.NoError(t, err)

	files, err := w.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app/api/views.py",
		"app/main.py",
		"app/models.py",
	}, relPaths(t, root, files))
}

func TestFilesWithoutGitignore(t *testing.T) {
	root := fixture(t)
	w, err := New(root, Options{NoGitignore: true})
	require.NoError(t, err)

	files, err := w.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app/api/local.py",
		"app/api/views.py",
		"app/main.py",
		"app/models.py",
		"app/schema_generated.py",
		"build/lib/copy.py",
		"node_modules/pkg/x.py",
		"proto/user_pb2.py",
		"setup.py",
	}, relPaths(t, root, files))
}

func TestAccepts(t *testing.T) {
	root := fixture(t)
	w, err := New(root, Options{
		ExcludeDirs:     []string{"node_modules"},
		IgnoreFilenames: map[string]bool{"setup.py": true},
	})
	require.NoError(t, err)

	cases := map[string]bool{
		"app/main.py":             true,
		"app/new_module.py":       true,
		"app/models.pyi":          false,
		"app/schema_generated.py": false,
		"app/api/local.py":        false,
		"build/lib/copy.py":       false,
		".git/hooks/hook.py":      false,
		"node_modules/pkg/x.py":   false,
		"setup.py":                false,
	}
	for rel, want := range cases {
		assert.Equal(t, want, w.Accepts(filepath.Join(root, filepath.FromSlash(rel))), rel)
	}
	assert.False(t, w.Accepts(filepath.Join(filepath.Dir(root), "outside.py")))
}

func TestRefreshPicksUpNewRules(t *testing.T) {
	root := fixture(t)
	w, err := New(root, Options{})
	require.NoError(t, err)

	target := filepath.Join(root, "app", "main.py")
	require.True(t, w.Accepts(target))

	writeTree(t, root, map[string]string{"app/.gitignore": "main.py\n"})
	assert.True(t, w.Accepts(target))

	w.Refresh()
	assert.False(t, w.Accepts(target))
}

func TestNewRejectsBadGlob(t *testing.T) {
	_, err := New(t.TempDir(), Options{ExcludeDirs: []string{"[oops"}})
	assert.ErrorContains(t, err, "invalid exclude dir pattern")
}

func TestFilesMissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing"), Options{NoGitignore: true})
	require.NoError(t, err)
	_, err = w.Files()
	assert.Error(t, err)
}
