package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK        = 0
	exitRunFailed = 1 // at least one server or output failed
	exitPreflight = 2 // invalid configuration, nothing was contacted
)

// exitError carries the process exit code alongside the error to print.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func preflight(err error) error { return &exitError{code: exitPreflight, err: err} }
func failed(err error) error    { return &exitError{code: exitRunFailed, err: err} }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	printError(stderr, err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument errors from cobra itself.
	return exitPreflight
}

// printError prints err, one line per aggregated error.
func printError(w io.Writer, err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			fmt.Fprintf(w, "error: %v\n", e)
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "rpstats [flags] <server>...",
		Short: "Report how many machines got a restore point inside the backup window",
		Long: `rpstats asks each backup server for the newest completed restore point of
every protected machine and reports which of them finished inside the nightly
backup window, together with the overall compliance percentage.

A server is a host name or an http(s) URI. Credentials may be embedded in the
URI; otherwise --username is used and the password is read from
RPSTATS_PASSWORD, the config file, or prompted for on a terminal.`,
		Example: `  rpstats vbr01.example.com
  rpstats --window-start 20:00 --window-end 05:30 --format csv -o report.csv.gz vbr01 vbr02
  rpstats --exclude-vms-file excluded.txt --history sqlite --history-path runs.db vbr01
  rpstats --tui --refresh 5m https://admin@vbr01:9419`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts)
		},
	}

	addConfigFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "open an interactive viewer for a single server")
	cmd.Flags().DurationVar(&opts.refresh, "refresh", 0, "auto refresh interval for --tui (0 = press r to refresh)")

	cmd.AddCommand(newHistoryCmd(opts))
	return cmd
}
