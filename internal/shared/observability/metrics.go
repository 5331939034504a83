package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ivrit_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ivrit_files_scanned_total",
		Help: "Total number of source files read and parsed.",
	})

	FilesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ivrit_files_failed_total",
		Help: "Total number of source files skipped because of an error.",
	}, []string{"reason"})

	StubsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ivrit_stubs_written_total",
		Help: "Total number of declaration files written.",
	})

	ParametersInferredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ivrit_parameters_inferred_total",
		Help: "Total number of parameter annotations inferred from the naming policy.",
	})

	ParametersUnmatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ivrit_parameters_unmatched_total",
		Help: "Total number of unannotated parameters whose name is not in the naming policy.",
	})

	ConstructorsSynthesizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ivrit_constructors_synthesized_total",
		Help: "Total number of constructors synthesized from class-level annotations.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ivrit_run_seconds",
		Help:    "Time spent on a full generation run or watch batch.",
		Buckets: prometheus.DefBuckets,
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ivrit_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
