package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"bytes_small", 512, "512 B"},
		{"bytes_max", 1023, "1023 B"},
		{"one_kb", 1024, "1.0 KB"},
		{"one_and_half_kb", 1536, "1.5 KB"},
		{"just_under_mb", 1024*1024 - 1, "1024.0 KB"},
		{"one_mb", 1024 * 1024, "1.0 MB"},
		{"one_gb", 1024 * 1024 * 1024, "1.0 GB"},
		{"one_and_half_gb", int64(1.5 * 1024 * 1024 * 1024), "1.5 GB"},
		{"one_tb", 1024 * 1024 * 1024 * 1024, "1.0 TB"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatBytes(tc.input))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{"zero", 0, "0:00:00"},
		{"seconds", 42 * time.Second, "0:00:42"},
		{"minutes", 90 * time.Minute, "1:30:00"},
		{"truncates_sub_second", 61*time.Second + 900*time.Millisecond, "0:01:01"},
		{"long", 27*time.Hour + 5*time.Minute + 3*time.Second, "27:05:03"},
		{"unknown", -1, "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDuration(tc.input))
		})
	}
}

func TestFormatThroughput(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		d     time.Duration
		want  string
	}{
		{"one_mb_per_second", 60 * 1024 * 1024, time.Minute, "1.0 MB/s"},
		{"zero_bytes", 0, time.Second, "0 B/s"},
		{"zero_duration", 1024, 0, "---"},
		{"unknown_duration", 1024, -1, "---"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatThroughput(tc.bytes, tc.d))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"zero", 0, "0"},
		{"small", 42, "42"},
		{"three_digits", 999, "999"},
		{"four_digits", 1000, "1,000"},
		{"seven_digits", 1234567, "1,234,567"},
		{"negative", -12345, "-12,345"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatNumber(tc.input))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{"zero", 0, "0.00%"},
		{"typical", 71.43, "71.43%"},
		{"hundred", 100.0, "100.00%"},
		{"rounds", 66.666, "66.67%"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatPercent(tc.input))
		})
	}
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "1.0", FormatRatio(1))
	assert.Equal(t, "50.0", FormatRatio(50))
	assert.Equal(t, "1,250.0", FormatRatio(1250))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "---", FormatTimestamp(time.Time{}))
	assert.Equal(t, "2025-01-10 06:00:00",
		FormatTimestamp(time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC)))
}
