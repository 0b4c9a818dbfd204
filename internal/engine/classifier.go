package engine

import (
	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// neutralRatio is used for ratios that are missing or already in the
// "percent retained" encoding.
const neutralRatio = 1.0

// normalizeRatio converts a "times smaller" ratio into percent retained
// (100/v). Values <= 1, including missing ones, become neutralRatio.
func normalizeRatio(v float64) float64 {
	if v > 1 {
		return 100 / v
	}
	return neutralRatio
}

// dataRead is the amount of source data the job had to read for c.
func dataRead(c model.Candidate) int64 {
	if c.Type == model.RestorePointIncrement {
		return c.DataSize
	}
	return c.ApproxSize
}

// Classify enriches c into a Record. It returns false when c has no
// completion time or completed after the window closed; callers should keep
// looking at older candidates for the same machine.
func Classify(c model.Candidate, w model.BackupWindow) (model.Record, bool) {
	if c.CompletionTime == nil {
		return model.Record{}, false
	}
	completed := *c.CompletionTime
	if completed.After(w.End) {
		return model.Record{}, false
	}

	duration := completed.Sub(c.CreationTime)
	if duration < 0 {
		duration = model.DurationUnknown
	}

	dedup := normalizeRatio(c.RawDedupRatio)
	compr := normalizeRatio(c.RawComprRatio)

	return model.Record{
		Candidate:      c,
		Duration:       duration,
		DataRead:       dataRead(c),
		DedupRatio:     dedup,
		ComprRatio:     compr,
		Reduction:      dedup * compr,
		InBackupWindow: w.Contains(completed),
	}, true
}
