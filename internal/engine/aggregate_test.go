package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDivide(t *testing.T) {
	cases := []struct {
		name string
		a, b float64
		want float64
	}{
		{"normal", 10, 4, 2.5},
		{"divide by zero", 5, 0, 0},
		{"zero numerator", 0, 5, 0},
		{"both zero", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, safeDivide(tc.a, tc.b))
		})
	}
}

func TestCompliancePercent(t *testing.T) {
	cases := []struct {
		name            string
		total, inWindow int
		want            float64
	}{
		{"seven_five", 7, 5, 71.43},
		{"empty", 0, 0, 0},
		{"all", 4, 4, 100},
		{"none", 3, 0, 0},
		{"one_third", 3, 1, 33.33},
		{"two_thirds", 3, 2, 66.67},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CompliancePercent(tc.total, tc.inWindow))
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(testWindow, 7, 5)
	assert.Equal(t, testWindow.Start, s.WindowStart)
	assert.Equal(t, testWindow.End, s.WindowEnd)
	assert.Equal(t, 7, s.TotalRestorePoints)
	assert.Equal(t, 5, s.InWindowCount)
	assert.Equal(t, 71.43, s.CompliancePercent)

	empty := Summarize(testWindow, 0, 0)
	assert.Equal(t, 0.0, empty.CompliancePercent)
}
