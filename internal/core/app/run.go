package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ivrit/internal/core/errors"
	"ivrit/internal/shared/observability"
	"ivrit/internal/shared/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Run lists every Python source below the root and processes it. Files that
// fail to parse are logged, counted in Summary.Failed and skipped. Write
// failures and cancellation abort the run.
func (a *App) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	logger := slog.With("run", runID)
	started := time.Now()

	ctx, span := observability.Tracer.Start(ctx, "app.Run", trace.WithAttributes(
		attribute.String("ivrit.run", runID),
		attribute.String("ivrit.root", a.Config.Root),
	))
	defer span.End()

	files, err := a.currentWalker().Files()
	if err != nil {
		span.SetStatus(codes.Error, "list source files")
		return Summary{}, errors.AddContext(errors.Wrap(err, errors.CodeIO, "list source files"), errors.CtxPath, a.Config.Root)
	}
	logger.Debug("listed source files", "root", a.Config.Root, "count", len(files))

	summary, err := a.processFiles(ctx, logger, files)
	summary.Duration = time.Since(started)
	observability.RunDuration.Observe(summary.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("ivrit.files", summary.Files),
		attribute.Int("ivrit.stubs", summary.Written),
		attribute.Int("ivrit.failed", summary.Failed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run aborted")
		logger.Error("run aborted", "error", err, "stubs", summary.Written, "failed", summary.Failed)
		return summary, err
	}

	logger.Info("run complete",
		"files", summary.Files,
		"stubs", summary.Written,
		"failed", summary.Failed,
		"duration", summary.Duration.Round(time.Millisecond),
		"heap_mb", util.HeapAllocMB(),
	)
	return summary, nil
}

func (a *App) processFiles(ctx context.Context, logger *slog.Logger, files []string) (Summary, error) {
	var (
		summary Summary
		mu      sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.Jobs)
	for _, path := range files {
		path := path
		g.Go(func() error {
			res, err := a.ProcessFile(gctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				summary.add(res)
				if res.Written {
					logger.Debug("wrote stub", "path", res.StubPath, "imports", len(res.Imports))
				}
				return nil
			}

			reason, isolated := failureReason(err)
			if !isolated {
				return err
			}
			summary.Failed++
			observability.FilesFailedTotal.WithLabelValues(reason).Inc()
			logger.Error("skipping file", "path", path, "error", err)
			return nil
		})
	}

	return summary, g.Wait()
}
