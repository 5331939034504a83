// Package app drives a generation run: it lists the project's Python sources,
// rewrites each into a declaration file and collects the unmatched names.
package app

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ivrit/internal/core/config"
	"ivrit/internal/core/walk"
	"ivrit/internal/core/watcher"
	"ivrit/internal/engine/parser"
	"ivrit/internal/engine/stubgen"
	"ivrit/internal/engine/unmatched"
	"ivrit/internal/shared/util"
)

// StubExt is appended to a source path to name its declaration file.
const StubExt = "i"

// Summary totals one run or one watch batch.
type Summary struct {
	Files       int
	Written     int
	Unchanged   int
	Failed      int
	Inferred    int
	Synthesized int
	Unmatched   int
	Duration    time.Duration
}

func (s *Summary) add(res FileResult) {
	s.Files++
	if res.Written {
		s.Written++
	} else {
		s.Unchanged++
	}
	s.Inferred += res.Inferred
	s.Synthesized += res.Synthesized
	for _, n := range res.Unmatched {
		s.Unmatched += n
	}
}

// FileResult is the outcome of processing one source file.
type FileResult struct {
	Path        string
	StubPath    string
	Written     bool
	Inferred    int
	Synthesized int
	Unmatched   map[string]int
	Imports     []string
}

type App struct {
	Config *config.Config
	// Out receives the reports printed by watch mode.
	Out io.Writer

	parser  *parser.Parser
	counter *unmatched.Counter
	limiter *util.Limiter

	mu      sync.RWMutex
	policy  stubgen.Policy
	walker  *walk.Walker
	watcher *watcher.Watcher
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if strings.TrimSpace(cfg.Root) == "" {
		cfg.Root = "."
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = config.DefaultJobs
	}

	w, err := newWalker(cfg)
	if err != nil {
		return nil, err
	}
	cfg.Root = w.Root()
	if strings.TrimSpace(cfg.Path) == "" {
		cfg.Path = filepath.Join(cfg.Root, config.DefaultFileName)
	} else if abs, err := filepath.Abs(cfg.Path); err == nil {
		cfg.Path = abs
	}

	return &App{
		Config:  cfg,
		Out:     os.Stdout,
		parser:  parser.NewParser(parser.NewGrammarLoader()),
		counter: unmatched.NewCounter(),
		policy:  PolicyFromConfig(cfg),
		walker:  w,
	}, nil
}

func newWalker(cfg *config.Config) (*walk.Walker, error) {
	return walk.New(cfg.Root, walk.Options{
		ExcludeDirs:     cfg.ExcludeDirs,
		ExcludeFiles:    cfg.ExcludeFiles,
		IgnoreFilenames: cfg.IgnoredFilenames(),
	})
}

// PolicyFromConfig builds the naming policy the generator consults.
func PolicyFromConfig(cfg *config.Config) stubgen.Policy {
	names := make(map[string]string, len(cfg.Names))
	for name, fq := range cfg.Names {
		names[name] = fq
	}
	return stubgen.Policy{
		Names:           names,
		IgnoreNames:     cfg.IgnoredNames(),
		IgnoreFilenames: cfg.IgnoredFilenames(),
	}
}

func (a *App) currentPolicy() stubgen.Policy {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.policy
}

func (a *App) currentWalker() *walk.Walker {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.walker
}

// Counter exposes the run-wide unmatched-name counter.
func (a *App) Counter() *unmatched.Counter {
	return a.counter
}

// StubPath returns the declaration file path for a source path.
func StubPath(source string) string {
	return source + StubExt
}
