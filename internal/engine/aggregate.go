package engine

import (
	"math"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// safeDivide returns a/b, or 0 when b is zero.
func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CompliancePercent is inWindow/total as a percentage rounded to two
// decimals, or 0 when total is 0.
func CompliancePercent(total, inWindow int) float64 {
	return round2(safeDivide(float64(inWindow), float64(total)) * 100)
}

// Summarize builds the run summary from the finalized counters.
func Summarize(w model.BackupWindow, total, inWindow int) model.Summary {
	return model.Summary{
		WindowStart:        w.Start,
		WindowEnd:          w.End,
		TotalRestorePoints: total,
		InWindowCount:      inWindow,
		CompliancePercent:  CompliancePercent(total, inWindow),
	}
}

// CountInWindow recounts in-window records by enumeration.
func CountInWindow(records []model.Record) int {
	n := 0
	for _, r := range records {
		if r.InBackupWindow {
			n++
		}
	}
	return n
}
