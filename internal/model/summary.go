package model

import "time"

// BackupWindow is the interval a restore point must complete in to count as
// compliant. End is always the most recent occurrence of the configured end
// time that is not in the future.
type BackupWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End], both ends inclusive.
func (w BackupWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Summary is the aggregated SLA result for one run.
type Summary struct {
	WindowStart        time.Time
	WindowEnd          time.Time
	TotalRestorePoints int
	InWindowCount      int
	CompliancePercent  float64
}

// Report is the complete output of one server run.
type Report struct {
	RunID       string
	Server      string
	GeneratedAt time.Time
	Summary     Summary
	Records     []Record
	SkippedJobs []string
}
