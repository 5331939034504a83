// Package report renders the unmatched-name report in the supported console
// formats.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ivrit/internal/engine/unmatched"
)

type Format string

const (
	FormatText     Format = "text"
	FormatTSV      Format = "tsv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

var formats = []Format{FormatText, FormatTSV, FormatMarkdown, FormatJSON}

// ParseFormat maps a user supplied name to a Format. The empty string is text.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatText, nil
	}
	for _, f := range formats {
		if string(f) == name {
			return f, nil
		}
	}
	if name == "md" {
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, tsv, markdown or json)", name)
}

// WriteUnmatched renders entries to w. Nothing is written for an empty report.
func WriteUnmatched(w io.Writer, entries []unmatched.Entry, format Format) error {
	if len(entries) == 0 {
		return nil
	}

	var out string
	switch format {
	case FormatText, "":
		out = text(entries)
	case FormatTSV:
		out = tsv(entries)
	case FormatMarkdown:
		out = markdown(entries)
	case FormatJSON:
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal unmatched report: %w", err)
		}
		out = string(data) + "\n"
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write unmatched report: %w", err)
	}
	return nil
}

func text(entries []unmatched.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%-20s %6d\n", e.Name, e.Count))
	}
	return b.String()
}

func tsv(entries []unmatched.Entry) string {
	var b strings.Builder
	b.WriteString("Name\tCount\tShare\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%s\t%d\t%.4f\n", e.Name, e.Count, e.Share))
	}
	return b.String()
}

func markdown(entries []unmatched.Entry) string {
	var b strings.Builder
	b.WriteString("## Unmatched Parameter Names\n\n")
	b.WriteString("| Name | Count | Share |\n")
	b.WriteString("| --- | ---: | ---: |\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("| `%s` | %d | %.1f%% |\n", e.Name, e.Count, e.Share*100))
	}
	return b.String()
}
