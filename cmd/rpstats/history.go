package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mmehrtens/get-RPstatistics/internal/format"
	"github.com/mmehrtens/get-RPstatistics/internal/history"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		server string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded run summaries, newest first",
		Example: `  rpstats history
  rpstats history --server vbr01 --limit 30
  rpstats history --history sqlite --history-path runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return preflight(fmt.Errorf("--limit must be >= 0, got %d", limit))
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return preflight(err)
			}
			backend, err := history.ParseBackend(cfg.History.Backend)
			if err != nil {
				return preflight(err)
			}
			if backend == history.BackendNone {
				return preflight(fmt.Errorf("history is disabled (history.backend is none)"))
			}

			store, err := history.Open(backend, cfg.History.Path)
			if err != nil {
				return failed(fmt.Errorf("open history: %w", err))
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), history.Query{Server: server, Limit: limit})
			if err != nil {
				return failed(fmt.Errorf("list history: %w", err))
			}
			writeHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "only show runs of this server")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show (0 = all)")
	return cmd
}

// writeHistory renders entries as a table.
func writeHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers("Generated", "Server", "Window Start", "Window End", "Points", "In Window", "Compliance", "Skipped", "Run")
	for _, e := range entries {
		t = t.Row(
			format.FormatTimestamp(e.GeneratedAt),
			e.Server,
			format.FormatTimestamp(e.WindowStart),
			format.FormatTimestamp(e.WindowEnd),
			format.FormatNumber(int64(e.TotalRestorePoints)),
			format.FormatNumber(int64(e.InWindowCount)),
			format.FormatPercent(e.CompliancePercent),
			strconv.Itoa(e.SkippedJobs),
			e.RunID,
		)
	}
	fmt.Fprintln(w, t.String())
}
