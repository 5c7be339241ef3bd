package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"formexport/adapters/excel"
	"formexport/domain/form"
	"formexport/internal"
	"formexport/internal/errors"
	"formexport/internal/sanitize"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. FORMEXPORT_SHEET
const EnvPrefix = "FORMEXPORT"

const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 8080
	DefaultMaxUploadBytes = 50 * 1024 * 1024
	DefaultMaxJobs        = 2
	DefaultSessionTTL     = 2 * time.Hour
	DefaultLogLevel       = "info"
)

// Config represents the complete application configuration
type Config struct {
	Export ExportConfig
	Server ServerConfig
	// LogLevel is one of error, warn, info, debug, trace
	LogLevel string
}

// ExportConfig holds the pipeline settings
type ExportConfig struct {
	Sheet        string
	StartRow     int
	OptionCutoff int
	BaseName     string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Host           string
	Port           int
	GinMode        string
	MaxUploadBytes int64
	MaxJobs        int64
	// SessionTTL expires idle web sessions; zero keeps them
	SessionTTL     time.Duration
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Sheet:        excel.DefaultSheet,
			StartRow:     1,
			OptionCutoff: form.LargeOptionCutoff,
			BaseName:     sanitize.DefaultBaseName,
		},
		Server: ServerConfig{
			Host:           DefaultHost,
			Port:           DefaultPort,
			GinMode:        "release",
			MaxUploadBytes: DefaultMaxUploadBytes,
			MaxJobs:        DefaultMaxJobs,
			SessionTTL:     DefaultSessionTTL,
		},
		LogLevel: DefaultLogLevel,
	}
}

// keys maps viper keys to flag names; env vars replace dots with underscores
var keys = map[string]string{
	"export.sheet":         "sheet",
	"export.start_row":     "start-row",
	"export.option_cutoff": "option-cutoff",
	"export.base_name":     "base-name",
	"server.host":          "host",
	"server.port":          "port",
	"server.gin_mode":      "gin-mode",
	"server.max_upload":    "max-upload",
	"server.max_jobs":      "max-jobs",
	"server.session_ttl":   "session-ttl",
	"log_level":            "log-level",
}

// DefineFlags registers every setting on flags. Flags left unset fall back to
// the environment and then to the defaults.
func DefineFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("sheet", d.Export.Sheet, "Worksheet holding the form export")
	flags.Int("start-row", d.Export.StartRow, "Header row of the worksheet (1-based)")
	flags.Int("option-cutoff", d.Export.OptionCutoff, "Dropdowns with more options than this are skipped unless chosen")
	flags.String("base-name", d.Export.BaseName, "Base name of the zip archive")
	flags.String("host", d.Server.Host, "HTTP listen host")
	flags.Int("port", d.Server.Port, "HTTP listen port")
	flags.String("gin-mode", d.Server.GinMode, "gin mode: debug, release or test")
	flags.Int64("max-upload", d.Server.MaxUploadBytes, "Maximum upload size in bytes")
	flags.Int64("max-jobs", d.Server.MaxJobs, "Maximum concurrent pipeline runs")
	flags.Duration("session-ttl", d.Server.SessionTTL, "Idle time after which web sessions are dropped")
	flags.String("log-level", d.LogLevel, "Log level: error, warn, info, debug, trace")
}

// Load reads .env, then FORMEXPORT_* variables, then the given flags (which
// may be nil) and validates the result
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read .env")
	}

	v := newViper()
	if flags != nil {
		for key, flag := range keys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "failed to bind flag %s", flag)
				}
			}
		}
	}

	cfg := &Config{
		Export: ExportConfig{
			Sheet:        v.GetString("export.sheet"),
			StartRow:     v.GetInt("export.start_row"),
			OptionCutoff: v.GetInt("export.option_cutoff"),
			BaseName:     v.GetString("export.base_name"),
		},
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			GinMode:        v.GetString("server.gin_mode"),
			MaxUploadBytes: v.GetInt64("server.max_upload"),
			MaxJobs:        v.GetInt64("server.max_jobs"),
			SessionTTL:     v.GetDuration("server.session_ttl"),
		},
		LogLevel: strings.ToLower(v.GetString("log_level")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("export.sheet", d.Export.Sheet)
	v.SetDefault("export.start_row", d.Export.StartRow)
	v.SetDefault("export.option_cutoff", d.Export.OptionCutoff)
	v.SetDefault("export.base_name", d.Export.BaseName)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.gin_mode", d.Server.GinMode)
	v.SetDefault("server.max_upload", d.Server.MaxUploadBytes)
	v.SetDefault("server.max_jobs", d.Server.MaxJobs)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("log_level", d.LogLevel)
	return v
}

// Validate checks the configuration, returning CONFIG_INVALID errors
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Export.Sheet) == "" {
		return errors.ConfigInvalid("sheet name cannot be empty")
	}
	if c.Export.StartRow < 1 {
		return errors.ConfigInvalid("start row must be 1 or greater")
	}
	if c.Export.OptionCutoff < 0 {
		return errors.ConfigInvalid("option cutoff cannot be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.ConfigInvalid("port must be between 1 and 65535")
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("invalid gin mode: %s", c.Server.GinMode))
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("maximum upload size must be positive")
	}
	if c.Server.MaxJobs < 1 {
		return errors.ConfigInvalid("maximum concurrent jobs must be at least 1")
	}
	if c.Server.SessionTTL < 0 {
		return errors.ConfigInvalid("session TTL cannot be negative")
	}
	if _, ok := internal.ParseLogLevel(c.LogLevel); !ok {
		return errors.ConfigInvalid(fmt.Sprintf("invalid log level: %s", c.LogLevel))
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// String returns a one-line summary of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Sheet: %s, StartRow: %d, OptionCutoff: %d, BaseName: %s, Address: %s, MaxJobs: %d, LogLevel: %s}",
		c.Export.Sheet, c.Export.StartRow, c.Export.OptionCutoff, c.Export.BaseName, c.Address(), c.Server.MaxJobs, c.LogLevel)
}
