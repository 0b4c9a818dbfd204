package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatBytes formats a byte count into a human-readable string with 1 decimal place.
// Thresholds: <1KB → B, <1MB → KB, <1GB → MB, <1TB → GB, else TB.
func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
		tb = gb * 1024
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	case bytes < gb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes < tb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	default:
		return fmt.Sprintf("%.1f TB", float64(bytes)/tb)
	}
}

// FormatThroughput formats bytes processed over d as a per-second rate.
// A non-positive duration returns "---".
func FormatThroughput(bytes int64, d time.Duration) string {
	if d <= 0 {
		return "---"
	}
	perSec := float64(bytes) / d.Seconds()
	return FormatBytes(int64(perSec)) + "/s"
}

// FormatDuration renders a backup duration as H:MM:SS.
// Negative durations (the unknown-duration sentinel) return "unknown".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "unknown"
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
// Uses strconv.FormatInt directly to avoid abs64 overflow for math.MinInt64.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		// s starts with "-"; strip it, insert commas, restore sign.
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatPercent formats a percentage with two decimal places.
// Example: 71.428 → "71.43%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// FormatRatio formats a percent-retained ratio (1 = no reduction data) with
// one decimal place and comma-separated thousands.
func FormatRatio(r float64) string {
	return formatCommaFloat(r)
}

// FormatTimestamp renders t in its own location as "2006-01-02 15:04:05".
// The zero time returns "---".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "---"
	}
	return t.Format(time.DateTime)
}

// formatCommaFloat formats a float with comma-separated thousands and one decimal place.
func formatCommaFloat(f float64) string {
	formatted := fmt.Sprintf("%.1f", f)
	sign := ""
	if len(formatted) > 0 && formatted[0] == '-' {
		sign = "-"
		formatted = formatted[1:]
	}
	parts := strings.SplitN(formatted, ".", 2)
	intPart := insertCommas(parts[0])
	if len(parts) == 2 {
		return sign + intPart + "." + parts[1]
	}
	return sign + intPart
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
