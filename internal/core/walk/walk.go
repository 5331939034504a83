// Package walk lists the Python sources below a project root, honouring
// .gitignore files and the configured exclude globs.
package walk

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/gobwas/glob"
)

const (
	SourceExt = ".py"
	gitDir    = ".git"
)

type Options struct {
	// ExcludeDirs and ExcludeFiles are globs matched against base names.
	ExcludeDirs  []string
	ExcludeFiles []string
	// IgnoreFilenames are exact base names that are never listed.
	IgnoreFilenames map[string]bool
	// NoGitignore disables .gitignore handling.
	NoGitignore bool
}

type Walker struct {
	root      string
	dirGlobs  []glob.Glob
	fileGlobs []glob.Glob
	ignored   map[string]bool
	gitignore bool

	mu     sync.Mutex
	cached gitignore.Matcher
}

func New(root string, opts Options) (*Walker, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}

	dirGlobs, err := compileGlobs("exclude dir", opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs("exclude file", opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	ignored := opts.IgnoreFilenames
	if ignored == nil {
		ignored = map[string]bool{}
	}
	return &Walker{
		root:      abs,
		dirGlobs:  dirGlobs,
		fileGlobs: fileGlobs,
		ignored:   ignored,
		gitignore: !opts.NoGitignore,
	}, nil
}

func compileGlobs(kind string, patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func (w *Walker) Root() string {
	return w.root
}

// Files returns the sorted absolute paths of every Python source below the
// root that is not excluded.
func (w *Walker) Files() ([]string, error) {
	w.Refresh()
	matcher, err := w.matcher()
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == w.root {
			return nil
		}

		parts := w.relParts(path)
		if d.IsDir() {
			if d.Name() == gitDir || matchAny(w.dirGlobs, d.Name()) || matcher.Match(parts, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.accepts(d.Name()) && !matcher.Match(parts, false) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", w.root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Accepts reports whether path would be listed by Files. Watch mode uses it
// to filter events without walking the tree again.
func (w *Walker) Accepts(file string) bool {
	abs, err := filepath.Abs(file)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(w.root, abs)
	rel = filepath.ToSlash(rel)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}
	if !w.accepts(filepath.Base(abs)) {
		return false
	}

	dirs := strings.Split(path.Dir(rel), "/")
	for _, dir := range dirs {
		if dir == gitDir || (dir != "." && matchAny(w.dirGlobs, dir)) {
			return false
		}
	}

	matcher, err := w.matcher()
	if err != nil {
		return true
	}
	parts := w.relParts(abs)
	for i := 1; i < len(parts); i++ {
		if matcher.Match(parts[:i], true) {
			return false
		}
	}
	return !matcher.Match(parts, false)
}

func (w *Walker) accepts(name string) bool {
	if filepath.Ext(name) != SourceExt || w.ignored[name] {
		return false
	}
	return !matchAny(w.fileGlobs, name)
}

// Refresh drops the cached .gitignore rules so the next lookup rereads them.
func (w *Walker) Refresh() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cached = nil
}

func (w *Walker) matcher() (gitignore.Matcher, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cached != nil {
		return w.cached, nil
	}

	var patterns []gitignore.Pattern
	if w.gitignore {
		ps, err := gitignore.ReadPatterns(osfs.New(w.root), nil)
		if err != nil {
			return nil, fmt.Errorf("read .gitignore patterns below %s: %w", w.root, err)
		}
		patterns = ps
	}
	w.cached = gitignore.NewMatcher(patterns)
	return w.cached, nil
}

func (w *Walker) relParts(path string) []string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return []string{filepath.Base(path)}
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
