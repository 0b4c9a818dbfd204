package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mmehrtens/get-RPstatistics/internal/config"
	"github.com/mmehrtens/get-RPstatistics/internal/engine"
	"github.com/mmehrtens/get-RPstatistics/internal/exclusion"
	"github.com/mmehrtens/get-RPstatistics/internal/history"
	"github.com/mmehrtens/get-RPstatistics/internal/logging"
	"github.com/mmehrtens/get-RPstatistics/internal/model"
	"github.com/mmehrtens/get-RPstatistics/internal/report"
	"github.com/mmehrtens/get-RPstatistics/internal/tui"
)

// runReport is the root command: validate, run every server, write outputs.
func runReport(cmd *cobra.Command, args []string, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return preflight(err)
	}
	if len(args) > 0 {
		cfg.Servers = args
	}
	if len(cfg.Servers) == 0 {
		return preflight(errors.New("at least one server is required"))
	}
	if err := cfg.Validate(); err != nil {
		return preflight(err)
	}
	targets, err := parseTargets(cfg.Servers)
	if err != nil {
		return preflight(err)
	}
	if opts.tui && len(targets) != 1 {
		return preflight(fmt.Errorf("--tui shows exactly one server, got %d", len(targets)))
	}
	if opts.refresh < 0 {
		return preflight(fmt.Errorf("--refresh must be >= 0, got %s", opts.refresh))
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return preflight(err)
	}
	defer func() { _ = log.Sync() }()

	// The window is checked before anything touches the network.
	window, err := engine.CalcWindow(time.Now(), cfg.LookBackDays, cfg.WindowStart, cfg.WindowEnd)
	if err != nil {
		return preflight(err)
	}

	password := cfg.Password
	if needsPassword(targets, cfg) {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			log.Warn("no password configured and stdin is not a terminal, continuing without one")
		} else if password, err = promptPassword(fd, cmd.ErrOrStderr(), cfg.Username); err != nil {
			return preflight(err)
		}
	}

	idx, err := buildExclusions(cfg, log)
	if err != nil {
		return preflight(err)
	}
	kinds, _ := cfg.JobKinds()

	runOpts := engine.RunOptions{
		Window:     window,
		Exclusions: idx,
		JobKinds:   kinds,
		Logger:     log,
	}
	dial := newDialer(targets, cfg, password)

	if opts.tui {
		return runTUI(cmd.Context(), targets[0].name, dial, runOpts, cfg, opts.refresh)
	}

	log.Info("starting run",
		zap.Strings("servers", targetNames(targets)),
		zap.Time("windowStart", window.Start),
		zap.Time("windowEnd", window.End),
		zap.Int("vmRules", idx.VMRuleCount()),
		zap.Int("jobRules", idx.JobRuleCount()))

	reports, runErr := engine.RunServers(cmd.Context(), targetNames(targets), dial, runOpts, cfg.Parallel)

	var result error
	if runErr != nil {
		result = multierror.Append(result, runErr)
	}
	if err := writeOutputs(cmd, cfg, reports, log); err != nil {
		result = multierror.Append(result, err)
	}
	if result != nil {
		return failed(result)
	}
	return nil
}

// buildExclusions loads both list sources and parses both patterns.
func buildExclusions(cfg *config.Config, log *zap.Logger) (*exclusion.Index, error) {
	return exclusion.Build(exclusion.Options{
		VMPattern:  cfg.ExcludeVMs,
		VMList:     exclusion.LoadFile(cfg.ExcludeVMsFile, log),
		JobPattern: cfg.ExcludeJobs,
		JobList:    exclusion.LoadFile(cfg.ExcludeJobsFile, log),
		Separator:  cfg.SeparatorRune(),
	})
}

// writeOutputs writes the report, appends history and writes the textfile.
// Every step is attempted even when an earlier one fails.
func writeOutputs(cmd *cobra.Command, cfg *config.Config, reports []*model.Report, log *zap.Logger) error {
	var result error
	format, _ := report.ParseFormat(cfg.Output.Format)
	ropts := report.Options{Format: format, Delimiter: cfg.DelimiterRune()}

	if cfg.Output.Path == "" {
		ropts.Width = terminalWidth()
		if err := report.Write(cmd.OutOrStdout(), reports, ropts); err != nil {
			result = multierror.Append(result, fmt.Errorf("write report: %w", err))
		}
	} else {
		if err := report.WriteFile(cfg.Output.Path, reports, ropts); err != nil {
			result = multierror.Append(result, fmt.Errorf("write report: %w", err))
		} else {
			log.Info("report written", zap.String("path", cfg.Output.Path), zap.String("format", string(format)))
		}
	}

	if err := appendHistory(cmd.Context(), cfg, reports); err != nil {
		result = multierror.Append(result, err)
	}

	if cfg.Textfile != "" {
		if err := report.WriteTextfile(cfg.Textfile, reports); err != nil {
			result = multierror.Append(result, fmt.Errorf("write textfile: %w", err))
		} else {
			log.Debug("textfile written", zap.String("path", cfg.Textfile))
		}
	}
	return result
}

func appendHistory(ctx context.Context, cfg *config.Config, reports []*model.Report) error {
	backend, _ := history.ParseBackend(cfg.History.Backend)
	store, err := history.Open(backend, cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	var entries []history.Entry
	for _, r := range reports {
		if r != nil {
			entries = append(entries, history.EntryFromReport(r))
		}
	}
	if len(entries) == 0 {
		return nil
	}
	if err := store.Append(ctx, entries...); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// terminalWidth returns stdout's width, or 0 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// runTUI opens the interactive viewer. Every refresh recomputes the window
// from the current time. Logging is silenced while the viewer owns the
// terminal; failures show up in the header instead.
func runTUI(ctx context.Context, server string, dial engine.DialFunc, runOpts engine.RunOptions, cfg *config.Config, refresh time.Duration) error {
	runOpts.Logger = zap.NewNop()
	run := func(ctx context.Context) (*model.Report, error) {
		o := runOpts
		w, err := engine.CalcWindow(time.Now(), cfg.LookBackDays, cfg.WindowStart, cfg.WindowEnd)
		if err != nil {
			return nil, err
		}
		o.Window = w
		reports, err := engine.RunServers(ctx, []string{server}, dial, o, 1)
		if err != nil {
			return nil, err
		}
		return reports[0], nil
	}

	app := tui.NewApp(ctx, server, run, nil, refresh)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return failed(fmt.Errorf("tui: %w", err))
	}
	return nil
}
