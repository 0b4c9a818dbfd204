package tui

import (
	"sort"
	"strings"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// sortRecords returns a sorted copy of rows.
// Column mapping:
//
//	0=ID, 1=Machine, 2=Job, 3=Type, 4=Repository, 5=Completed,
//	6=Duration, 7=DataRead, 8=InWindow
//
// col -1 means no sort (preserve order).
// Ties are broken by ID ascending.
func sortRecords(rows []model.Record, col int, desc bool) []model.Record {
	out := make([]model.Record, len(rows))
	copy(out, rows)

	if col < 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var cmp int
		switch col {
		case 0:
			cmp = compareInt(int64(a.ID), int64(b.ID))
		case 1:
			cmp = strings.Compare(strings.ToLower(a.MachineName), strings.ToLower(b.MachineName))
		case 2:
			cmp = strings.Compare(strings.ToLower(a.JobName), strings.ToLower(b.JobName))
		case 3:
			cmp = strings.Compare(string(a.Type), string(b.Type))
		case 4:
			cmp = strings.Compare(strings.ToLower(repositoryName(a)), strings.ToLower(repositoryName(b)))
		case 5:
			cmp = a.Completed().Compare(b.Completed())
		case 6:
			cmp = compareInt(int64(a.Duration), int64(b.Duration))
		case 7:
			cmp = compareInt(a.DataRead, b.DataRead)
		case 8:
			cmp = compareBool(a.InBackupWindow, b.InBackupWindow)
		}
		if cmp == 0 {
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareBool orders false before true.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func repositoryName(r model.Record) string {
	if r.Storage == nil {
		return ""
	}
	return r.Storage.RepositoryName()
}

// filterRecords returns rows whose machine, job or repository name contains
// search (case-insensitive). When outsideOnly is set, records inside the
// backup window are dropped.
func filterRecords(rows []model.Record, search string, outsideOnly bool) []model.Record {
	if search == "" && !outsideOnly {
		return rows
	}
	lower := strings.ToLower(search)
	out := rows[:0:0]
	for _, r := range rows {
		if outsideOnly && r.InBackupWindow {
			continue
		}
		if lower != "" &&
			!strings.Contains(strings.ToLower(r.MachineName), lower) &&
			!strings.Contains(strings.ToLower(r.JobName), lower) &&
			!strings.Contains(strings.ToLower(repositoryName(r)), lower) {
			continue
		}
		out = append(out, r)
	}
	return out
}
