package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ivrit/internal/core/config"
	"ivrit/internal/core/errors"
	"ivrit/internal/core/watcher"
	"ivrit/internal/shared/observability"
	"ivrit/internal/shared/util"
	"ivrit/internal/ui/report"

	"github.com/google/uuid"
)

const gitignoreFile = ".gitignore"

// Watch regenerates declaration files for Python sources as they change
// until ctx is cancelled. Each batch gets a fresh unmatched report on Out.
// Editing the settings file reloads it and regenerates every file.
func (a *App) Watch(ctx context.Context, format report.Format) error {
	if addr := a.Config.MetricsAddr; addr != "" {
		srv := observability.NewServer(addr)
		if err := srv.Start(ctx); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "start metrics server")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				slog.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	a.limiter = util.NewLimiter(a.Config.Watch.Rate, a.Config.Watch.Burst)
	defer func() { a.limiter = nil }()

	batches := make(chan []string, 1)
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.ExcludeDirs, a.interesting, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create watcher")
	}
	defer w.Close()
	a.mu.Lock()
	a.watcher = w
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.watcher = nil
		a.mu.Unlock()
	}()

	if err := w.Watch([]string{a.Config.Root}); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeIO, "watch root"), errors.CtxPath, a.Config.Root)
	}
	slog.Info("watching for changes", "root", a.Config.Root, "debounce", a.Config.Watch.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Done():
			return errors.New(errors.CodeInternal, "file watcher stopped")
		case paths := <-batches:
			if err := a.HandleChanges(ctx, paths, format); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// interesting filters watcher events down to Python sources the walker would
// list plus the files that change how sources are listed or rewritten.
func (a *App) interesting(path string) bool {
	if a.isSettingsFile(path) || filepath.Base(path) == gitignoreFile {
		return true
	}
	return a.currentWalker().Accepts(path)
}

func (a *App) isSettingsFile(path string) bool {
	return filepath.Clean(path) == filepath.Clean(a.Config.Path)
}

// HandleChanges processes one debounced batch of changed paths and prints the
// unmatched report for the batch.
func (a *App) HandleChanges(ctx context.Context, paths []string, format report.Format) error {
	logger := slog.With("run", uuid.NewString())
	started := time.Now()
	a.counter.Reset()

	var files []string
	full := false
	for _, path := range paths {
		switch {
		case a.isSettingsFile(path):
			a.reload()
			full = true
		case filepath.Base(path) == gitignoreFile:
			a.currentWalker().Refresh()
			full = true
		default:
			if _, err := os.Stat(path); err != nil {
				logger.Debug("ignoring vanished file", "path", path)
				continue
			}
			files = append(files, path)
		}
	}

	if full {
		listed, err := a.currentWalker().Files()
		if err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeIO, "list source files"), errors.CtxPath, a.Config.Root)
		}
		files = listed
	}
	if len(files) == 0 {
		return nil
	}

	logger.Info("detected changes", "count", len(files), "full", full)
	summary, err := a.processFiles(ctx, logger, files)
	summary.Duration = time.Since(started)
	observability.RunDuration.Observe(summary.Duration.Seconds())
	if err != nil {
		logger.Error("batch aborted", "error", err)
		return err
	}
	logger.Info("batch complete", "files", summary.Files, "stubs", summary.Written, "failed", summary.Failed)

	return a.Report(a.Out, format)
}

// reload rereads the settings file, keeping the command line settings.
func (a *App) reload() {
	next := config.LoadOrDefault(a.Config.Path)
	next.Root = a.Config.Root
	next.Jobs = a.Config.Jobs
	next.Format = a.Config.Format
	next.MetricsAddr = a.Config.MetricsAddr
	next.TraceEndpoint = a.Config.TraceEndpoint

	w, err := newWalker(next)
	if err != nil {
		slog.Warn("keeping previous settings", "path", a.Config.Path, "error", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.policy = PolicyFromConfig(next)
	a.walker = w
	a.Config.Names = next.Names
	a.Config.IgnoreNames = next.IgnoreNames
	a.Config.IgnoreFilenames = next.IgnoreFilenames
	a.Config.ExcludeDirs = next.ExcludeDirs
	a.Config.ExcludeFiles = next.ExcludeFiles
	a.Config.ReportTop = next.ReportTop
	a.Config.ReportThreshold = next.ReportThreshold
	a.Config.Watch = next.Watch
	a.limiter.SetRate(next.Watch.Rate)
	a.limiter.SetBurst(next.Watch.Burst)
	if a.watcher != nil {
		a.watcher.SetDebounce(next.Watch.Debounce)
	}
	slog.Info("reloaded settings", "path", a.Config.Path, "names", len(next.Names))
}
