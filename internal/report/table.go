package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/mmehrtens/get-RPstatistics/internal/format"
	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD75F"}
	colorRed   = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}
	colorGray  = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"}

	styleTitle = lipgloss.NewStyle().Bold(true)
	styleDim   = lipgloss.NewStyle().Foreground(colorGray)
)

var tableHeaders = []string{
	"#", "Machine", "Job", "Type", "Repository", "Completed", "Duration", "Read", "Reduction", "In Window",
}

// inWindowCol is the index of the "In Window" column.
const inWindowCol = 9

// WriteTable renders each report as a title line, a detail table and a
// summary line. width <= 0 lets the table size itself.
func WriteTable(w io.Writer, reports []*model.Report, width int) error {
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, renderReport(r, width)); err != nil {
			return err
		}
	}
	return nil
}

func renderReport(r *model.Report, width int) string {
	title := styleTitle.Render(fmt.Sprintf("%s  window %s → %s",
		r.Server,
		format.FormatTimestamp(r.Summary.WindowStart),
		format.FormatTimestamp(r.Summary.WindowEnd)))

	if len(r.Records) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, styleDim.Render("  (no restore points)"), SummaryLine(r.Summary))
	}

	records := r.Records
	t := ltable.New().
		Headers(tableHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == ltable.HeaderRow {
				return base.Bold(true)
			}
			if col == inWindowCol {
				if records[row].InBackupWindow {
					return base.Foreground(colorGreen)
				}
				return base.Foreground(colorRed)
			}
			return base
		}).
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderColumn(false)

	if width > 0 {
		t = t.Width(width)
	}
	for _, rec := range records {
		t = t.Row(tableRow(rec)...)
	}

	parts := []string{title, t.String(), SummaryLine(r.Summary)}
	if len(r.SkippedJobs) > 0 {
		parts = append(parts, styleDim.Render(fmt.Sprintf("skipped jobs: %v", r.SkippedJobs)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func tableRow(rec model.Record) []string {
	repo := ""
	if rec.Storage != nil {
		repo = rec.Storage.RepositoryName()
	}
	inWindow := "no"
	if rec.InBackupWindow {
		inWindow = "yes"
	}
	return []string{
		strconv.Itoa(rec.ID),
		rec.MachineName,
		rec.JobName,
		string(rec.Type),
		repo,
		format.FormatTimestamp(rec.Completed()),
		format.FormatDuration(rec.Duration),
		format.FormatBytes(rec.DataRead),
		format.FormatRatio(rec.Reduction),
		inWindow,
	}
}

// SummaryLine is the one-line compliance statement printed under a table.
func SummaryLine(s model.Summary) string {
	return fmt.Sprintf("%d of %d restore points completed inside the backup window: %s",
		s.InWindowCount, s.TotalRestorePoints, format.FormatPercent(s.CompliancePercent))
}
