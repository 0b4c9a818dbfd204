package engine

import (
	"sort"
	"strings"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// FoldOutcome tells what Fold did with a record.
type FoldOutcome int

const (
	Inserted  FoldOutcome = iota // first record for the machine
	Replaced                     // strictly newer than the retained record
	Discarded                    // retained record is equal or newer
)

func (o FoldOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	default:
		return "discarded"
	}
}

// Deduplicator keeps the most recent record per machine and maintains the
// total and in-window counters incrementally. It has a single writer and is
// not safe for concurrent use.
type Deduplicator struct {
	byMachine map[string]model.Record
	total     int
	inWindow  int
	finalized bool
}

// NewDeduplicator returns an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{byMachine: make(map[string]model.Record)}
}

// Fold offers rec for its machine. Ties keep the record seen first, so the
// result is only deterministic when callers feed candidates in a stable
// order.
func (d *Deduplicator) Fold(rec model.Record) FoldOutcome {
	if d.finalized {
		panic("engine: Fold after Finalize")
	}

	existing, ok := d.byMachine[rec.MachineName]
	if !ok {
		d.byMachine[rec.MachineName] = rec
		d.add(rec)
		return Inserted
	}
	if !existing.Completed().Before(rec.Completed()) {
		return Discarded
	}

	d.remove(existing)
	d.byMachine[rec.MachineName] = rec
	d.add(rec)
	return Replaced
}

func (d *Deduplicator) add(rec model.Record) {
	d.total++
	if rec.InBackupWindow {
		d.inWindow++
	}
}

func (d *Deduplicator) remove(rec model.Record) {
	d.total--
	if rec.InBackupWindow {
		d.inWindow--
	}
}

// Total returns the number of retained records.
func (d *Deduplicator) Total() int { return d.total }

// InWindow returns how many retained records completed inside the window.
func (d *Deduplicator) InWindow() int { return d.inWindow }

// Len returns the number of distinct machines seen.
func (d *Deduplicator) Len() int { return len(d.byMachine) }

// Finalize returns the retained records sorted by machine name (then job
// name) with IDs 1..N assigned in that order. The Deduplicator is read-only
// afterwards.
func (d *Deduplicator) Finalize() []model.Record {
	d.finalized = true

	out := make([]model.Record, 0, len(d.byMachine))
	for _, rec := range d.byMachine {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].MachineName), strings.ToLower(out[j].MachineName)
		if a != b {
			return a < b
		}
		if out[i].MachineName != out[j].MachineName {
			return out[i].MachineName < out[j].MachineName
		}
		return out[i].JobName < out[j].JobName
	})
	for i := range out {
		out[i].ID = i + 1
	}
	return out
}
