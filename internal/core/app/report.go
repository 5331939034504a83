package app

import (
	"io"

	"ivrit/internal/ui/report"
)

// Report renders the unmatched names whose share of all unmatched
// occurrences exceeds the configured threshold. Nothing is written when no
// parameter went unmatched.
func (a *App) Report(w io.Writer, format report.Format) error {
	entries := a.counter.Report(a.Config.ReportTop, a.Config.ReportThreshold)
	return report.WriteUnmatched(w, entries, format)
}
