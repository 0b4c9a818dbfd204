package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mmehrtens/get-RPstatistics/internal/config"
)

// rootOptions holds flags that are not config keys.
type rootOptions struct {
	configFile string
	tui        bool
	refresh    time.Duration
}

// addConfigFlags registers one persistent flag per config key. Defaults come
// from viper, so the flag defaults here are only used for --help.
func addConfigFlags(cmd *cobra.Command, opts *rootOptions) {
	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configFile, "config", "c", "", "config file (default: rpstats.yaml in ., $HOME/.config/rpstats, /etc/rpstats)")

	f.StringP("username", "u", "", "platform user name")
	f.String("password", "", "platform password (prefer RPSTATS_PASSWORD or the prompt)")
	f.Bool("insecure", false, "skip TLS certificate verification")
	f.Duration("request-timeout", 30*time.Second, "per-request timeout")
	f.Float64("requests-per-second", 10, "maximum catalog requests per second per server (0 = unlimited)")

	f.StringSlice("job-types", []string{"Backup", "EndpointBackup"}, "job types to report on")
	f.Int("look-back-days", 1, "days between the window start and the window end")
	f.String("window-start", "22:00", "backup window start (HH:MM)")
	f.String("window-end", "06:00", "backup window end (HH:MM)")

	f.String("exclude-vms", "", "skip machines whose name contains this text (* allowed)")
	f.String("exclude-jobs", "", "skip jobs whose description contains this text (* allowed)")
	f.String("exclude-vms-file", "", "file of machine names to skip, one per line, optionally name<sep>id")
	f.String("exclude-jobs-file", "", "file of job names to skip, one per line")
	f.String("separator", ",", "separator between name and id in --exclude-vms-file")

	f.String("format", "table", "report format: table, csv, json or yaml")
	f.StringP("output", "o", "", "write the report to this file instead of stdout (.gz compresses)")
	f.String("delimiter", ",", "CSV field delimiter")

	f.String("history", "csv", "run history backend: csv, sqlite or none")
	f.String("history-path", "", "run history file (default rpstats-history.csv, or rpstats-history.db for sqlite)")
	f.String("textfile", "", "write Prometheus textfile collector metrics to this file")
	f.Int("parallel", 1, "servers to query at the same time")

	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("log-format", "console", "log format: console or json")
}

// loadConfig resolves the configuration for cmd: defaults, then the config
// file, then RPSTATS_* variables, then flags that were set explicitly.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	return config.Load(v, opts.configFile)
}
