// Package config loads rpstats settings from a YAML file, RPSTATS_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mmehrtens/get-RPstatistics/internal/engine"
	"github.com/mmehrtens/get-RPstatistics/internal/history"
	"github.com/mmehrtens/get-RPstatistics/internal/logging"
	"github.com/mmehrtens/get-RPstatistics/internal/model"
	"github.com/mmehrtens/get-RPstatistics/internal/report"
)

// EnvPrefix is prepended to every environment variable ("RPSTATS_LOOK_BACK_DAYS").
const EnvPrefix = "RPSTATS"

// Config is the resolved configuration for one invocation.
type Config struct {
	Servers           []string      `mapstructure:"servers"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	Insecure          bool          `mapstructure:"insecure"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`

	JobTypes     []string `mapstructure:"job_types"`
	LookBackDays int      `mapstructure:"look_back_days"`
	WindowStart  string   `mapstructure:"window_start"`
	WindowEnd    string   `mapstructure:"window_end"`

	ExcludeVMs      string `mapstructure:"exclude_vms"`
	ExcludeJobs     string `mapstructure:"exclude_jobs"`
	ExcludeVMsFile  string `mapstructure:"exclude_vms_file"`
	ExcludeJobsFile string `mapstructure:"exclude_jobs_file"`
	Separator       string `mapstructure:"separator"`

	Output   OutputConfig  `mapstructure:"output"`
	History  HistoryConfig `mapstructure:"history"`
	Textfile string        `mapstructure:"textfile"`
	Parallel int           `mapstructure:"parallel"`
	Log      LogConfig     `mapstructure:"log"`
}

type OutputConfig struct {
	Format    string `mapstructure:"format"`
	Path      string `mapstructure:"path"`
	Delimiter string `mapstructure:"delimiter"`
}

type HistoryConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("servers", []string{})
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("insecure", false)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("requests_per_second", 10.0)

	v.SetDefault("job_types", []string{string(model.JobKindBackup), string(model.JobKindEndpointBackup)})
	v.SetDefault("look_back_days", 1)
	v.SetDefault("window_start", "22:00")
	v.SetDefault("window_end", "06:00")

	v.SetDefault("exclude_vms", "")
	v.SetDefault("exclude_jobs", "")
	v.SetDefault("exclude_vms_file", "")
	v.SetDefault("exclude_jobs_file", "")
	v.SetDefault("separator", ",")

	v.SetDefault("output.format", string(report.FormatTable))
	v.SetDefault("output.path", "")
	v.SetDefault("output.delimiter", ",")

	v.SetDefault("history.backend", string(history.BackendCSV))
	v.SetDefault("history.path", "") // filled from the backend by Load

	v.SetDefault("textfile", "")
	v.SetDefault("parallel", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads file into v when given, otherwise looks for rpstats.yaml in the
// working directory, $HOME/.config/rpstats and /etc/rpstats. A missing
// default file is not an error; a missing explicit file is.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("rpstats")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/rpstats")
		v.AddConfigPath("/etc/rpstats")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.History.Path == "" {
		if b, err := history.ParseBackend(cfg.History.Backend); err == nil {
			cfg.History.Path = history.DefaultPath(b)
		}
	}
	return &cfg, nil
}

// flagKeys maps CLI flag names onto config keys where they differ.
var flagKeys = map[string]string{
	"format":       "output.format",
	"output":       "output.path",
	"delimiter":    "output.delimiter",
	"history":      "history.backend",
	"history-path": "history.path",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// FlagKey returns the config key a flag is bound to. Dashes become
// underscores unless the flag has an explicit mapping.
func FlagKey(name string) string {
	if k, ok := flagKeys[name]; ok {
		return k
	}
	return strings.ReplaceAll(name, "-", "_")
}

// BindFlags binds every flag in fs that names a config key. Flags that are
// not config keys (--config, --tui, --help) are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var result error
	fs.VisitAll(func(f *pflag.Flag) {
		key := FlagKey(f.Name)
		if !isKey(key) {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			result = multierror.Append(result, fmt.Errorf("bind --%s: %w", f.Name, err))
		}
	})
	return result
}

func isKey(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

var keys = []string{
	"servers", "username", "password", "insecure", "request_timeout", "requests_per_second",
	"job_types", "look_back_days", "window_start", "window_end",
	"exclude_vms", "exclude_jobs", "exclude_vms_file", "exclude_jobs_file", "separator",
	"output.format", "output.path", "output.delimiter",
	"history.backend", "history.path",
	"textfile", "parallel", "log.level", "log.format",
}

// Validate checks everything that can be checked before touching the
// network. All problems are reported together.
func (c *Config) Validate() error {
	var result error
	add := func(err error) { result = multierror.Append(result, err) }

	if _, err := engine.ParseTimeOfDay(c.WindowStart); err != nil {
		add(fmt.Errorf("window_start: %w", err))
	}
	if _, err := engine.ParseTimeOfDay(c.WindowEnd); err != nil {
		add(fmt.Errorf("window_end: %w", err))
	}
	if c.LookBackDays < 0 {
		add(fmt.Errorf("look_back_days must be >= 0, got %d", c.LookBackDays))
	}
	if _, err := singleRune("separator", c.Separator); err != nil {
		add(err)
	}
	if _, err := singleRune("output.delimiter", c.Output.Delimiter); err != nil {
		add(err)
	}
	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		add(err)
	}
	if _, err := history.ParseBackend(c.History.Backend); err != nil {
		add(err)
	}
	if b, _ := history.ParseBackend(c.History.Backend); b != history.BackendNone && c.History.Path == "" {
		add(errors.New("history.path is required unless history.backend is none"))
	}
	if _, err := c.JobKinds(); err != nil {
		add(err)
	}
	if c.Parallel < 1 {
		add(fmt.Errorf("parallel must be >= 1, got %d", c.Parallel))
	}
	if c.RequestTimeout <= 0 {
		add(fmt.Errorf("request_timeout must be > 0, got %s", c.RequestTimeout))
	}
	if _, err := logging.Config(c.Log.Level, c.Log.Format); err != nil {
		add(err)
	}
	return result
}

// JobKinds parses the job type allow-list.
func (c *Config) JobKinds() ([]model.JobKind, error) {
	if len(c.JobTypes) == 0 {
		return model.DefaultJobKinds, nil
	}
	kinds := make([]model.JobKind, 0, len(c.JobTypes))
	for _, s := range c.JobTypes {
		k, ok := model.ParseJobKind(s)
		if !ok {
			return nil, fmt.Errorf("job_types: unknown job type %q", s)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// SeparatorRune returns the list-source separator.
func (c *Config) SeparatorRune() rune {
	r, _ := singleRune("separator", c.Separator)
	return r
}

// DelimiterRune returns the CSV output delimiter.
func (c *Config) DelimiterRune() rune {
	r, _ := singleRune("output.delimiter", c.Output.Delimiter)
	return r
}

// singleRune requires s to be exactly one character. Escapes such as `\t`
// are accepted for tab.
func singleRune(key, s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", key, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("%s: %q cannot be used as a separator", key, s)
	}
	return r, nil
}
