package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmehrtens/get-RPstatistics/internal/engine"
	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// chdir moves into an empty directory so a stray rpstats.yaml is not picked up.
func chdir(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Empty(t, cfg.Servers)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10.0, cfg.RequestsPerSecond)
	assert.Equal(t, []string{"Backup", "EndpointBackup"}, cfg.JobTypes)
	assert.Equal(t, 1, cfg.LookBackDays)
	assert.Equal(t, "22:00", cfg.WindowStart)
	assert.Equal(t, "06:00", cfg.WindowEnd)
	assert.Equal(t, ",", cfg.Separator)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, "csv", cfg.History.Backend)
	assert.Equal(t, "rpstats-history.csv", cfg.History.Path)
	assert.Equal(t, 1, cfg.Parallel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	chdir(t)
	path := filepath.Join(t.TempDir(), "rpstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
servers:
  - vbr01.example.com
  - vbr02.example.com
username: svc-report
look_back_days: 3
window_start: "20:30"
request_timeout: 45s
job_types: [Backup, BackupCopy]
output:
  format: csv
  delimiter: ";"
history:
  backend: sqlite
  path: /tmp/rpstats.db
`), 0o644))

	t.Setenv("RPSTATS_WINDOW_END", "07:15")
	t.Setenv("RPSTATS_OUTPUT_PATH", "report.csv.gz")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"vbr01.example.com", "vbr02.example.com"}, cfg.Servers)
	assert.Equal(t, "svc-report", cfg.Username)
	assert.Equal(t, 3, cfg.LookBackDays)
	assert.Equal(t, "20:30", cfg.WindowStart)
	assert.Equal(t, "07:15", cfg.WindowEnd)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "report.csv.gz", cfg.Output.Path)
	assert.Equal(t, ';', cfg.DelimiterRune())
	assert.Equal(t, "sqlite", cfg.History.Backend)

	kinds, err := cfg.JobKinds()
	require.NoError(t, err)
	assert.Equal(t, []model.JobKind{model.JobKindBackup, model.JobKindBackupCopy}, kinds)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	chdir(t)
	t.Setenv("HOME", t.TempDir())

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.Bool("tui", false, "")
	fs.Int("look-back-days", 1, "")
	fs.String("format", "table", "")
	fs.String("history-path", "", "")
	fs.String("window-start", "22:00", "")

	v := New()
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--look-back-days=5", "--format=json", "--history-path=h.db"}))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.LookBackDays)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "h.db", cfg.History.Path)
	assert.Equal(t, "22:00", cfg.WindowStart, "unchanged flags fall back to defaults")
}

func TestLoad_HistoryPathFollowsBackend(t *testing.T) {
	chdir(t)
	t.Setenv("HOME", t.TempDir())

	t.Setenv("RPSTATS_HISTORY_BACKEND", "sqlite")
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "rpstats-history.db", cfg.History.Path)

	t.Setenv("RPSTATS_HISTORY_BACKEND", "none")
	cfg, err = Load(New(), "")
	require.NoError(t, err)
	assert.Empty(t, cfg.History.Path)
	require.NoError(t, cfg.Validate())

	t.Setenv("RPSTATS_HISTORY_BACKEND", "sqlite")
	t.Setenv("RPSTATS_HISTORY_PATH", "runs.sqlite")
	cfg, err = Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "runs.sqlite", cfg.History.Path, "an explicit path wins")
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "output.format", FlagKey("format"))
	assert.Equal(t, "log.level", FlagKey("log-level"))
	assert.Equal(t, "exclude_vms_file", FlagKey("exclude-vms-file"))
	assert.Equal(t, "parallel", FlagKey("parallel"))
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	chdir(t)
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad_window_start", func(c *Config) { c.WindowStart = "10pm" }},
		{"bad_window_end", func(c *Config) { c.WindowEnd = "25:00" }},
		{"negative_look_back", func(c *Config) { c.LookBackDays = -1 }},
		{"empty_separator", func(c *Config) { c.Separator = "" }},
		{"long_separator", func(c *Config) { c.Separator = ",," }},
		{"quote_delimiter", func(c *Config) { c.Output.Delimiter = `"` }},
		{"bad_format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad_backend", func(c *Config) { c.History.Backend = "postgres" }},
		{"missing_history_path", func(c *Config) { c.History.Path = "" }},
		{"bad_job_type", func(c *Config) { c.JobTypes = []string{"Replica"} }},
		{"zero_parallel", func(c *Config) { c.Parallel = 0 }},
		{"zero_timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"bad_log_level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig(t)
	cfg.WindowStart = "x"
	cfg.Parallel = 0

	err := cfg.Validate()
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.True(t, errors.Is(err, engine.ErrInvalidTimeFormat))
}

func TestValidate_NoHistoryNeedsNoPath(t *testing.T) {
	cfg := validConfig(t)
	cfg.History.Backend = "none"
	cfg.History.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestSeparatorRune(t *testing.T) {
	cfg := &Config{Separator: ";"}
	assert.Equal(t, ';', cfg.SeparatorRune())
	cfg.Separator = `\t`
	assert.Equal(t, '\t', cfg.SeparatorRune())
}
