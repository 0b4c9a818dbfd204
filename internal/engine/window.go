package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// ErrInvalidTimeFormat is returned when a time of day is not "HH:MM".
var ErrInvalidTimeFormat = errors.New("invalid time format, want HH:MM")

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour, Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string. A single-digit hour
// ("7:30") is accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%q: %w", s, ErrInvalidTimeFormat)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// on returns the time of day on the calendar day of ref shifted by days,
// in ref's location.
func (tod TimeOfDay) on(ref time.Time, days int) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d+days, tod.Hour, tod.Minute, 0, 0, ref.Location())
}

// CalcWindow derives the backup window for a run started at now.
//
// Start is today's start time moved back lookBackDays calendar days. End is
// today's end time, or yesterday's when today's has not happened yet.
func CalcWindow(now time.Time, lookBackDays int, start, end string) (model.BackupWindow, error) {
	if lookBackDays < 0 {
		return model.BackupWindow{}, fmt.Errorf("look back days must be >= 0, got %d", lookBackDays)
	}
	startTOD, err := ParseTimeOfDay(start)
	if err != nil {
		return model.BackupWindow{}, fmt.Errorf("window start: %w", err)
	}
	endTOD, err := ParseTimeOfDay(end)
	if err != nil {
		return model.BackupWindow{}, fmt.Errorf("window end: %w", err)
	}

	windowEnd := endTOD.on(now, 0)
	if windowEnd.After(now) {
		windowEnd = endTOD.on(now, -1)
	}

	return model.BackupWindow{
		Start: startTOD.on(now, -lookBackDays),
		End:   windowEnd,
	}, nil
}
