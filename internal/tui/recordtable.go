package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/mmehrtens/get-RPstatistics/internal/format"
	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// RecordTableModel is a sortable, paginated, searchable table of restore
// point records.
type RecordTableModel struct {
	tableModel
	outsideOnly bool
	window      model.BackupWindow
	allRows     []model.Record // unfiltered source data
	displayRows []model.Record // after filter + sort applied
}

// NewRecordTable returns a RecordTableModel with a 9-column layout sorted by
// ID ascending, which is machine name order.
func NewRecordTable() RecordTableModel {
	cols := []columnDef{
		{Title: "#", Width: 5, Align: "right", Key: "id"},
		{Title: "Machine", Width: 24, Align: "left", Key: "machine"},
		{Title: "Job", Width: 22, Align: "left", Key: "job"},
		{Title: "Type", Width: 10, Align: "left", Key: "type"},
		{Title: "Repository", Width: 16, Align: "left", Key: "repository"},
		{Title: "Completed", Width: 19, Align: "left", Key: "completed"},
		{Title: "Duration", Width: 9, Align: "right", Key: "duration"},
		{Title: "Read", Width: 10, Align: "right", Key: "read"},
		{Title: "Window", Width: 7, Align: "center", Key: "in_window"},
	}
	m := RecordTableModel{
		tableModel: newTableModel(cols),
	}
	m.sortCol = 0
	m.sortDesc = false
	return m
}

// SetData applies the current filter and sort to rows, storing the result as
// displayRows ready for rendering. w colours the completion column by age.
func (m *RecordTableModel) SetData(rows []model.Record, w model.BackupWindow) {
	m.allRows = rows
	m.window = w
	m.refresh()
}

func (m *RecordTableModel) refresh() {
	filtered := filterRecords(m.allRows, m.search, m.outsideOnly)
	m.displayRows = sortRecords(filtered, m.sortCol, m.sortDesc)
	m.clampPage(len(m.displayRows))
	m.clampCursor(len(m.pageRows()))
}

// Update handles keyboard events. It delegates to the embedded tableModel
// and re-applies filter/sort when the sort column, direction, search term or
// outside-only toggle changes.
func (m RecordTableModel) Update(msg tea.Msg) (RecordTableModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && m.focused && !m.searching && key.Matches(km, keys.OutsideOnly) {
		m.outsideOnly = !m.outsideOnly
		m.page = 0
		m.cursor = 0
		m.refresh()
		return m, nil
	}

	prevSort := m.sortCol
	prevDesc := m.sortDesc
	prevSearch := m.search

	base, cmd := m.tableModel.Update(msg)
	m.tableModel = base

	if m.sortCol != prevSort || m.sortDesc != prevDesc || m.search != prevSearch {
		m.refresh()
	} else {
		m.clampPage(len(m.displayRows))
		m.clampCursor(len(m.pageRows()))
	}
	return m, cmd
}

// pageRows returns the records visible on the current page.
func (m *RecordTableModel) pageRows() []model.Record {
	allIdx := make([]int, len(m.displayRows))
	for i := range m.displayRows {
		allIdx[i] = i
	}
	idx := currentPageIndices(allIdx, m.page, m.pageSize)
	out := make([]model.Record, len(idx))
	for i, j := range idx {
		out[i] = m.displayRows[j]
	}
	return out
}

// Selected returns the record under the cursor.
func (m *RecordTableModel) Selected() (model.Record, bool) {
	rows := m.pageRows()
	if len(rows) == 0 || m.cursor >= len(rows) {
		return model.Record{}, false
	}
	return rows[m.cursor], true
}

// renderTable renders the "Restore Points" section: a header bar followed by
// the lipgloss table body for the current page.
func (m *RecordTableModel) renderTable(app *App) string {
	pc := pageCount(len(m.displayRows), m.pageSize)
	hdr := m.renderHeader("Restore Points", m.page+1, pc)

	headers := make([]string, len(m.columns))
	for i, c := range m.columns {
		if i == m.sortCol {
			arrow := "↓"
			if !m.sortDesc {
				arrow = "↑"
			}
			headers[i] = c.Title + arrow
		} else {
			headers[i] = c.Title
		}
	}

	rows := m.pageRows()
	if len(rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (no restore points)"))
	}

	width := 0
	if app != nil {
		width = app.width
	}
	widths := columnWidths(width, m.columns)

	sortCol := m.sortCol
	cursor := m.cursor
	windowEnd := m.window.End
	t := ltable.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle()
			if row == cursor {
				base = base.Background(colorDark).Bold(true)
			} else if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			r := rows[row]
			switch col {
			case 5:
				return base.Foreground(severityToStyle(ageSeverity(windowEnd, r.Completed())).GetForeground())
			case 6:
				return base.Foreground(colorCyan)
			case 7:
				return base.Foreground(colorPurple)
			case 8:
				if r.InBackupWindow {
					return base.Foreground(colorGreen)
				}
				return base.Foreground(colorRed)
			default:
				return base.Foreground(colorWhite)
			}
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	if width > 0 {
		t = t.Width(width)
	}

	for _, r := range rows {
		cells := make([]string, len(m.columns))
		for col := range m.columns {
			cells[col] = truncateName(recordCellValue(r, col), widths[col])
		}
		t = t.Row(cells...)
	}

	parts := []string{hdr, t.String()}
	if sel, ok := m.Selected(); ok {
		parts = append(parts, renderDetail(sel))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders the title bar with search/sort/page hints.
func (m *RecordTableModel) renderHeader(title string, page, pageCount int) string {
	pageInfo := fmt.Sprintf("Page %d/%d", page, pageCount)
	if m.outsideOnly {
		pageInfo = "outside window only  " + pageInfo
	}

	var right string
	switch {
	case m.searching:
		right = "Search: " + m.input.View()
	case m.search != "":
		right = fmt.Sprintf("filter=%q  %s", m.search, pageInfo)
	default:
		right = fmt.Sprintf("[/: search]  [1-9: sort]  [←→: page]  %s", pageInfo)
	}

	return StyleDim.Render(title + "  " + right)
}

// renderDetail renders the fields of the selected record that do not fit in
// the table.
func renderDetail(r model.Record) string {
	repoKind, path := "", ""
	if r.Storage != nil {
		repoKind = r.Storage.RepositoryKind()
		path = r.Storage.StoragePath()
	}
	line := fmt.Sprintf("%s (%s)  job type %s  repo type %s  dedup %s  compr %s  reduction %s  approx %s  backup %s",
		r.MachineName, r.MachineID, r.JobKind, repoKind,
		format.FormatRatio(r.DedupRatio), format.FormatRatio(r.ComprRatio), format.FormatRatio(r.Reduction),
		format.FormatBytes(r.ApproxSize), format.FormatBytes(r.BackupSize))
	if path != "" {
		line += "  " + path
	}
	if r.JobDescription != "" {
		line += "  \"" + r.JobDescription + "\""
	}
	return StyleDim.Render("  " + line)
}

// recordCellValue formats a Record field for a given column index.
func recordCellValue(r model.Record, col int) string {
	switch col {
	case 0:
		return strconv.Itoa(r.ID)
	case 1:
		return r.MachineName
	case 2:
		return r.JobName
	case 3:
		return string(r.Type)
	case 4:
		return repositoryName(r)
	case 5:
		return format.FormatTimestamp(r.Completed())
	case 6:
		return format.FormatDuration(r.Duration)
	case 7:
		return format.FormatBytes(r.DataRead)
	case 8:
		if r.InBackupWindow {
			return "yes"
		}
		return "no"
	default:
		return ""
	}
}
