// Package history keeps an append-only log of run summaries so compliance can
// be tracked over time.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendCSV    Backend = "csv"
	BackendSQLite Backend = "sqlite"
	BackendNone   Backend = "none"
)

// ParseBackend maps a config string onto a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendCSV, BackendSQLite, BackendNone:
		return b, nil
	case "":
		return BackendNone, nil
	default:
		return "", fmt.Errorf("unknown history backend %q (want csv, sqlite or none)", s)
	}
}

// DefaultPath is the history file used for b when none is configured.
func DefaultPath(b Backend) string {
	switch b {
	case BackendCSV:
		return "rpstats-history.csv"
	case BackendSQLite:
		return "rpstats-history.db"
	default:
		return ""
	}
}

// Entry is one run summary for one server.
type Entry struct {
	RunID              string
	Server             string
	GeneratedAt        time.Time
	WindowStart        time.Time
	WindowEnd          time.Time
	TotalRestorePoints int
	InWindowCount      int
	CompliancePercent  float64
	SkippedJobs        int
}

// EntryFromReport extracts the summary of r.
func EntryFromReport(r *model.Report) Entry {
	return Entry{
		RunID:              r.RunID,
		Server:             r.Server,
		GeneratedAt:        r.GeneratedAt,
		WindowStart:        r.Summary.WindowStart,
		WindowEnd:          r.Summary.WindowEnd,
		TotalRestorePoints: r.Summary.TotalRestorePoints,
		InWindowCount:      r.Summary.InWindowCount,
		CompliancePercent:  r.Summary.CompliancePercent,
		SkippedJobs:        len(r.SkippedJobs),
	}
}

// Query filters List results. Zero values mean no filter.
type Query struct {
	Server string
	Limit  int
}

// Store persists entries. Implementations are not required to be safe for
// concurrent use.
type Store interface {
	Append(ctx context.Context, entries ...Entry) error
	// List returns matching entries newest first.
	List(ctx context.Context, q Query) ([]Entry, error)
	Close() error
}

// Open returns the Store for backend at path. BackendNone returns a Store
// that discards appends and lists nothing.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendCSV:
		return OpenCSV(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendNone, "":
		return nopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

type nopStore struct{}

func (nopStore) Append(context.Context, ...Entry) error { return nil }
func (nopStore) List(context.Context, Query) ([]Entry, error) { return nil, nil }
func (nopStore) Close() error { return nil }
