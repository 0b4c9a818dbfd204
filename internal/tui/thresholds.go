package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// severity represents the alert level for a metric value.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// complianceSeverity returns Warning below 95%, Critical below 80%.
func complianceSeverity(pct float64) severity {
	switch {
	case pct < 80:
		return severityCritical
	case pct < 95:
		return severityWarning
	default:
		return severityNormal
	}
}

// ageSeverity grades how long before the window end a restore point
// completed: Warning past one day, Critical past two.
func ageSeverity(windowEnd, completed time.Time) severity {
	age := windowEnd.Sub(completed)
	switch {
	case age > 48*time.Hour:
		return severityCritical
	case age > 24*time.Hour:
		return severityWarning
	default:
		return severityNormal
	}
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return StyleGreen
	}
}
