package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// RunFunc computes a fresh report. It is called from a Bubble Tea command
// goroutine, never concurrently with itself.
type RunFunc func(ctx context.Context) (*model.Report, error)

// App is the root Bubble Tea model for the report viewer.
type App struct {
	ctx      context.Context // parent of every run; cancelled when the program exits
	run      RunFunc
	server   string
	interval time.Duration // 0 = refresh only on demand
	timeout  time.Duration

	fetching         bool // true while a fetchCmd goroutine is in-flight
	report           *model.Report
	consecutiveFails int
	lastError        error
	lastUpdated      time.Time

	table RecordTableModel

	width, height int
	showHelp      bool
}

// NewApp creates an App for server. Runs derive their context from ctx.
// When initial is non-nil it is shown straight away and no run is started
// until a refresh.
func NewApp(ctx context.Context, server string, run RunFunc, initial *model.Report, interval time.Duration) *App {
	app := &App{
		ctx:      ctx,
		run:      run,
		server:   server,
		interval: interval,
		timeout:  10 * time.Minute,
		table:    NewRecordTable(),
	}
	app.table.focused = true
	if initial != nil {
		app.setReport(initial)
	} else {
		app.fetching = true // Init() issues an immediate fetchCmd
	}
	return app
}

// Init implements tea.Model.
func (app *App) Init() tea.Cmd {
	if app.fetching {
		return fetchCmd(app.ctx, app.run, app.timeout)
	}
	if app.interval > 0 {
		return tickCmd(app.interval)
	}
	return nil
}

func (app *App) setReport(r *model.Report) {
	app.report = r
	app.lastUpdated = r.GeneratedAt
	app.table.SetData(r.Records, model.BackupWindow{Start: r.Summary.WindowStart, End: r.Summary.WindowEnd})
}

// Update implements tea.Model. It is the only place App state changes.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height
		app.resizeTable()

	case ReportMsg:
		app.fetching = false
		app.consecutiveFails = 0
		app.lastError = nil
		app.setReport(msg.Report)
		if app.interval > 0 {
			return app, tickCmd(app.interval)
		}

	case FetchErrorMsg:
		app.fetching = false
		app.consecutiveFails++
		app.lastError = msg.Err
		if app.interval > 0 {
			return app, tickCmd(backoffDuration(app.consecutiveFails))
		}

	case TickMsg:
		if app.fetching {
			return app, nil
		}
		app.fetching = true
		return app, fetchCmd(app.ctx, app.run, app.timeout)

	case tea.KeyMsg:
		// While the search box is open every key belongs to it.
		if app.table.searching {
			var cmd tea.Cmd
			app.table, cmd = app.table.Update(msg)
			return app, cmd
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return app, tea.Quit
		case key.Matches(msg, keys.Refresh):
			if app.fetching {
				return app, nil
			}
			app.fetching = true
			return app, fetchCmd(app.ctx, app.run, app.timeout)
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		default:
			var cmd tea.Cmd
			app.table, cmd = app.table.Update(msg)
			return app, cmd
		}
	}

	return app, nil
}

// resizeTable fits the page size to the terminal height. Header, summary,
// table header, detail line and footer take seven lines.
func (app *App) resizeTable() {
	if app.height <= 0 {
		return
	}
	rows := app.height - 7
	if rows < 3 {
		rows = 3
	}
	app.table.pageSize = rows
	app.table.clampPage(len(app.table.displayRows))
	app.table.clampCursor(len(app.table.pageRows()))
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	var parts []string

	parts = append(parts, renderHeader(app))
	if s := renderSummary(app); s != "" {
		parts = append(parts, s)
	}
	if app.report != nil {
		parts = append(parts, app.table.renderTable(app))
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

// tickCmd schedules the next run after duration d.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchCmd runs the report under parent and returns a ReportMsg or
// FetchErrorMsg.
func fetchCmd(parent context.Context, run RunFunc, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		rep, err := run(ctx)
		if err != nil {
			return FetchErrorMsg{Err: err}
		}
		return ReportMsg{Report: rep}
	}
}

// backoffDuration returns min(2^fails * time.Second, 60*time.Second).
// At fails=1: 2s, fails=2: 4s, fails=3: 8s, ..., fails>=6: 60s.
func backoffDuration(fails int) time.Duration {
	const maxBackoff = 60 * time.Second
	if fails <= 0 {
		return time.Second
	}
	if fails >= 6 {
		return maxBackoff
	}
	return time.Duration(1<<fails) * time.Second
}
