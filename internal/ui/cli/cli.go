// Package cli implements the ivrit command line.
package cli

import (
	"flag"
	"fmt"
	"io"

	"ivrit/internal/core/config"
)

const versionString = "0.1.0"

type cliOptions struct {
	dir          string
	configPath   string
	jobs         int
	format       string
	watch        bool
	metricsAddr  string
	otlpEndpoint string
	verbose      bool
	version      bool
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("ivrit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ivrit [flags]\n\nGenerate .pyi stubs next to every Python source below the project root.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.dir, "C", ".", "Project root to scan")
	fs.StringVar(&opts.configPath, "config", config.DefaultFileName, "Settings file, relative to the project root")
	fs.IntVar(&opts.jobs, "jobs", config.DefaultJobs, "Number of files processed concurrently")
	fs.StringVar(&opts.format, "format", "text", "Unmatched-name report format: text, tsv, markdown or json")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and regenerate stubs as sources change")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on host:port while watching")
	fs.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "Export traces to an OTLP/gRPC collector at host:port")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if fs.NArg() > 0 {
		return cliOptions{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.jobs < 1 {
		return cliOptions{}, fmt.Errorf("-jobs must be >= 1, got %d", opts.jobs)
	}
	if opts.metricsAddr != "" && !opts.watch {
		return cliOptions{}, fmt.Errorf("-metrics-addr requires -watch")
	}
	return opts, nil
}
