package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ivrit/internal/core/app"
	"ivrit/internal/core/config"
	"ivrit/internal/shared/observability"
	"ivrit/internal/ui/report"
)

// Run executes the command line and returns the process exit status.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(stderr, err)
		}
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "ivrit v%s\n", versionString)
		return 0
	}

	configureLogging(stderr, opts.verbose)

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg := config.LoadOrDefault(config.ResolveRelative(opts.dir, opts.configPath))
	cfg.Root = opts.dir
	cfg.Jobs = opts.jobs
	cfg.Format = string(format)
	cfg.MetricsAddr = opts.metricsAddr
	cfg.TraceEndpoint = opts.otlpEndpoint

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.TraceEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "endpoint", cfg.TraceEndpoint, "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("trace export shutdown failed", "error", err)
		}
	}()

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return 1
	}
	a.Out = stdout

	summary, err := a.Run(ctx)
	if err != nil {
		slog.Error("run failed", "error", err)
		return 1
	}
	if err := a.Report(stdout, format); err != nil {
		slog.Error("failed to write report", "error", err)
		return 1
	}

	if opts.watch {
		if err := a.Watch(ctx, format); err != nil {
			slog.Error("watch failed", "error", err)
			return 1
		}
		return 0
	}

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
