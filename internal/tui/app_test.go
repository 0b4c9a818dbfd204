package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// fixtureReport returns a report over recordFixtures with one skipped job.
func fixtureReport() *model.Report {
	return &model.Report{
		RunID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
		Server:      "vbr01",
		GeneratedAt: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
		Summary: model.Summary{
			WindowStart:        fixtureWindow.Start,
			WindowEnd:          fixtureWindow.End,
			TotalRestorePoints: 4,
			InWindowCount:      2,
			CompliancePercent:  50,
		},
		Records:     recordFixtures(),
		SkippedJobs: []string{"Broken Job"},
	}
}

func staticRun(rep *model.Report, err error) RunFunc {
	return func(context.Context) (*model.Report, error) {
		return rep, err
	}
}

func TestNewApp_WithoutInitialFetchesOnInit(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", staticRun(fixtureReport(), nil), nil, 0)
	require.True(t, app.fetching)

	cmd := app.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	rm, ok := msg.(ReportMsg)
	require.True(t, ok, "expected ReportMsg, got %T", msg)
	assert.Equal(t, "vbr01", rm.Report.Server)
}

func TestNewApp_WithInitialShowsItImmediately(t *testing.T) {
	rep := fixtureReport()
	app := NewApp(context.Background(), "vbr01", nil, rep, 0)

	assert.False(t, app.fetching)
	assert.Same(t, rep, app.report)
	assert.Len(t, app.table.displayRows, 4)
	assert.Equal(t, rep.GeneratedAt, app.lastUpdated)
	assert.Nil(t, app.Init(), "manual refresh only: nothing scheduled")

	app = NewApp(context.Background(), "vbr01", nil, rep, time.Minute)
	assert.NotNil(t, app.Init(), "auto refresh schedules a tick")
}

func TestApp_ReportMsgUpdatesState(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", nil, nil, 0)
	app.consecutiveFails = 2
	app.lastError = errors.New("timeout")

	rep := fixtureReport()
	newModel, cmd := app.Update(ReportMsg{Report: rep})
	updated := newModel.(*App)

	assert.Same(t, rep, updated.report)
	assert.False(t, updated.fetching)
	assert.Equal(t, 0, updated.consecutiveFails)
	assert.Nil(t, updated.lastError)
	assert.Equal(t, fixtureWindow, updated.table.window)
	assert.Nil(t, cmd, "no tick without an interval")

	app.interval = 30 * time.Second
	_, cmd = app.Update(ReportMsg{Report: rep})
	assert.NotNil(t, cmd)
}

func TestApp_FetchErrorKeepsPreviousReport(t *testing.T) {
	rep := fixtureReport()
	app := NewApp(context.Background(), "vbr01", nil, rep, 10*time.Second)

	err1 := errors.New("connection refused")
	newModel, cmd := app.Update(FetchErrorMsg{Err: err1})
	app = newModel.(*App)

	assert.Equal(t, 1, app.consecutiveFails)
	assert.Equal(t, err1, app.lastError)
	assert.Same(t, rep, app.report)
	require.NotNil(t, cmd, "backoff tick scheduled")

	newModel, _ = app.Update(FetchErrorMsg{Err: err1})
	assert.Equal(t, 2, newModel.(*App).consecutiveFails)
}

func TestApp_RefreshKey(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", staticRun(nil, errors.New("boom")), fixtureReport(), 0)

	newModel, cmd := app.Update(runeKey('r'))
	app = newModel.(*App)
	assert.True(t, app.fetching)
	require.NotNil(t, cmd)
	msg := cmd()
	assert.IsType(t, FetchErrorMsg{}, msg)

	// A second press while a run is in flight does nothing.
	_, cmd = app.Update(runeKey('r'))
	assert.Nil(t, cmd)
}

func TestApp_RunUsesProgramContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	var seen error
	run := func(ctx context.Context) (*model.Report, error) {
		seen = ctx.Err()
		return nil, ctx.Err()
	}
	app := NewApp(parent, "vbr01", run, fixtureReport(), 0)

	cancel()
	_, cmd := app.Update(runeKey('r'))
	require.NotNil(t, cmd)
	msg := cmd()

	assert.ErrorIs(t, seen, context.Canceled)
	fe, ok := msg.(FetchErrorMsg)
	require.True(t, ok, "expected FetchErrorMsg, got %T", msg)
	assert.ErrorIs(t, fe.Err, context.Canceled)
}

func TestApp_TickSkippedWhileFetching(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", staticRun(fixtureReport(), nil), nil, time.Second)
	_, cmd := app.Update(TickMsg(time.Now()))
	assert.Nil(t, cmd)

	app.fetching = false
	_, cmd = app.Update(TickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.True(t, app.fetching)
}

func TestApp_WindowSizeResizesTable(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", nil, fixtureReport(), 0)

	newModel, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := newModel.(*App)

	assert.Equal(t, 120, updated.width)
	assert.Equal(t, 40, updated.height)
	assert.Equal(t, 33, updated.table.pageSize)
	assert.Nil(t, cmd)

	updated.Update(tea.WindowSizeMsg{Width: 80, Height: 5})
	assert.Equal(t, 3, updated.table.pageSize, "page size never drops below 3")
}

func TestApp_QuitKey(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", nil, fixtureReport(), 0)

	_, cmd := app.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitKeyTypedIntoSearch(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", nil, fixtureReport(), 0)

	app.Update(runeKey('/'))
	require.True(t, app.table.searching)
	app.Update(runeKey('q'))
	assert.True(t, app.table.searching, "q is typed into the search box")
	assert.Equal(t, "q", app.table.input.Value())
}

func TestApp_HelpToggle(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", nil, fixtureReport(), 0)
	app.width = 200

	assert.Contains(t, stripANSI(renderFooter(app)), "? for help")
	app.Update(runeKey('?'))
	assert.True(t, app.showHelp)
	assert.Contains(t, stripANSI(renderFooter(app)), "o: outside window only")
}

func TestApp_FooterShowsRefreshInterval(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", nil, fixtureReport(), 90*time.Second)
	app.width = 120
	assert.Contains(t, stripANSI(renderFooter(app)), "auto refresh every 1m30s")
}

func TestApp_KeysReachTable(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", nil, fixtureReport(), 0)

	app.Update(runeKey('o'))
	assert.True(t, app.table.outsideOnly)
	assert.Len(t, app.table.displayRows, 2)
}

func TestApp_View(t *testing.T) {
	app := NewApp(context.Background(), "vbr01", nil, fixtureReport(), 0)
	app.width = 160
	app.height = 30

	view := stripANSI(app.View())
	assert.Contains(t, view, "vbr01")
	assert.Contains(t, view, "Restore Points")
	assert.Contains(t, view, "web01")
	assert.Contains(t, view, "? for help")

	empty := NewApp(context.Background(), "vbr01", nil, nil, 0)
	view = stripANSI(empty.View())
	assert.NotContains(t, view, "Restore Points")
}

func TestBackoffDuration(t *testing.T) {
	cases := []struct {
		fails    int
		expected time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{10, 60 * time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, backoffDuration(tc.fails), "fails=%d", tc.fails)
	}
}

// stripANSI removes ANSI escape sequences for plain-text content assertions.
func stripANSI(s string) string {
	var out strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if r >= 0x40 && r <= 0x7E && r != '[' {
				inEscape = false
			}
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
