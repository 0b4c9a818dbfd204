// Package report renders SLA reports for people (table) and for other tools
// (CSV, JSON, YAML, Prometheus textfile).
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// Format selects a report encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists every supported encoding.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat maps a config string onto a Format, case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want table, csv, json or yaml)", s)
}

// Options controls Write.
type Options struct {
	Format    Format
	Delimiter rune // CSV only; 0 means ','
	Width     int  // table only; 0 lets the table size itself
}

// Write encodes reports to w. Table and CSV output concatenate one section
// per report; JSON and YAML emit a single document holding every report.
func Write(w io.Writer, reports []*model.Report, opts Options) error {
	reports = nonNil(reports)
	switch opts.Format {
	case FormatTable, "":
		return WriteTable(w, reports, opts.Width)
	case FormatCSV:
		return WriteCSV(w, reports, opts.Delimiter)
	case FormatJSON:
		return WriteJSON(w, reports)
	case FormatYAML:
		return WriteYAML(w, reports)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// nonNil drops the slots of failed servers.
func nonNil(reports []*model.Report) []*model.Report {
	out := make([]*model.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
