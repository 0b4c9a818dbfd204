package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmehrtens/get-RPstatistics/internal/client"
	"github.com/mmehrtens/get-RPstatistics/internal/format"
)

// renderHeader renders the top header bar with server, compliance and timing info.
//
// Layout:
//
//	left:   server (or "Running report for <server>..." before the first result)
//	center: colored "● 71.43% in window" (or "● FAILED  <error>")
//	right:  "Window: <start> → <end>  Last: HH:MM:SS"
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	var left, center, right string

	if app.report == nil {
		left = "Running report for " + app.server + "..."
		if app.lastError != nil {
			center = StyleError.Render("● FAILED  " + classifyError(app.lastError))
			right = StyleError.Render("Press r to retry")
		}
	} else {
		left = app.server
		s := app.report.Summary

		if app.lastError != nil {
			// Showing the previous report after a failed refresh.
			center = StyleError.Render("● STALE  " + classifyError(app.lastError))
			right = StyleError.Render("Press r to retry")
		} else {
			center = ComplianceStyle(s.CompliancePercent).Render("● " + format.FormatPercent(s.CompliancePercent) + " in window")
			lastStr := "---"
			if !app.lastUpdated.IsZero() {
				lastStr = app.lastUpdated.Format("15:04:05")
			}
			right = StyleDim.Render(fmt.Sprintf("Window: %s → %s  Last: %s",
				s.WindowStart.Format("01-02 15:04"), s.WindowEnd.Format("01-02 15:04"), lastStr))
			if app.fetching {
				right = StyleDim.Render("Refreshing...")
			}
		}
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	leftVW := lipgloss.Width(left)
	centerVW := lipgloss.Width(center)
	rightVW := lipgloss.Width(right)

	// Drop the right block first when everything does not fit.
	if leftVW+centerVW+rightVW > innerWidth {
		right, rightVW = "", 0
	}
	spacing := innerWidth - leftVW - centerVW - rightVW
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right
	row = lipgloss.NewStyle().MaxWidth(innerWidth).Render(row)

	return StyleHeader.Width(width).Render(row)
}

// renderSummary renders the counters line under the header.
func renderSummary(app *App) string {
	if app.report == nil {
		return ""
	}
	width := app.width
	if width <= 0 {
		width = 80
	}
	s := app.report.Summary
	text := fmt.Sprintf("Machines: %s  In window: %s  Outside: %s  Skipped jobs: %d  Run: %s",
		format.FormatNumber(int64(s.TotalRestorePoints)),
		format.FormatNumber(int64(s.InWindowCount)),
		format.FormatNumber(int64(s.TotalRestorePoints-s.InWindowCount)),
		len(app.report.SkippedJobs),
		shortID(app.report.RunID))
	return StyleSummary.Width(width).Render(text)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// classifyError turns a run error into a short human-readable reason.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return "Authentication failed (401)"
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized"):
		return "Authentication failed (401)"
	case strings.Contains(lower, "403") || strings.Contains(lower, "forbidden"):
		return "Authentication failed (403)"
	case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
		return "Timeout"
	case isTLSError(err):
		return "TLS error"
	}
	if len(msg) > 40 {
		return msg[:40] + "..."
	}
	return msg
}

// isTLSError reports whether err looks like a certificate or handshake failure.
func isTLSError(err error) bool {
	if err == nil {
		return false
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "x509") ||
		strings.Contains(lower, "certificate") ||
		strings.Contains(lower, "tls")
}

// formatDuration formats a refresh interval as a compact string, e.g. "10s", "2m" or "1m30s".
func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	if secs%60 == 0 {
		return fmt.Sprintf("%dm", secs/60)
	}
	return fmt.Sprintf("%dm%ds", secs/60, secs%60)
}
