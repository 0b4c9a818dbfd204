package tui

import (
	"time"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// ReportMsg delivers a freshly computed report to the TUI.
type ReportMsg struct {
	Report *model.Report
}

// FetchErrorMsg signals a failed run.
type FetchErrorMsg struct{ Err error }

// TickMsg triggers the next scheduled run.
type TickMsg time.Time
