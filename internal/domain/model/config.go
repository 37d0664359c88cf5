package model

import (
	"os"
	"path/filepath"
	"time"
)

// LogLevel defines logging levels
type LogLevel string

const (
	// LogLevelDebug is the level for debug messages
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the level for informational messages
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the level for warning messages
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the level for error messages
	LogLevelError LogLevel = "error"
)

// LogFormat selects the encoding of the log file
type LogFormat string

const (
	// LogFormatConsole writes human readable lines
	LogFormatConsole LogFormat = "console"
	// LogFormatJSON writes one JSON object per line
	LogFormatJSON LogFormat = "json"
)

const (
	// DefaultMinVersion is the oldest engine release the client talks to
	DefaultMinVersion = "2.3"
	// DefaultMinDailyVersion is the oldest engine daily build the client talks to
	DefaultMinDailyVersion = "D-2013-11-17"
	// MinPollInterval is the lower bound for job polling
	MinPollInterval = time.Second
)

// Config is the configuration structure for the zapscan client
type Config struct {
	// Host is the engine API host
	Host string
	// Port is the engine API port
	Port int
	// APIKey is passed explicitly on every mutating call, even when empty
	APIKey string
	// MinVersion is the minimum supported engine release
	MinVersion string
	// MinDailyVersion is the minimum supported engine daily build tag
	MinDailyVersion string
	// PollInterval is used by commands that wait for jobs
	PollInterval time.Duration
	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel LogLevel
	// LogFile is the path to log file (empty for stdout only)
	LogFile string
	// LogFormat is the log file encoding (console or json)
	LogFormat LogFormat
	// SnapshotDB is the path to the sqlite database used for history snapshots
	SnapshotDB string
	// MetricsNamespace prefixes the engine call metrics
	MetricsNamespace string
}

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	return &Config{
		Host:             "127.0.0.1",
		Port:             8080,
		APIKey:           "",
		MinVersion:       DefaultMinVersion,
		MinDailyVersion:  DefaultMinDailyVersion,
		PollInterval:     MinPollInterval,
		LogLevel:         LogLevelWarn,
		LogFile:          "",
		LogFormat:        LogFormatConsole,
		SnapshotDB:       defaultSnapshotDB(),
		MetricsNamespace: "zapscan",
	}
}

// Validate checks the parameters needed before any network call is made
func (c *Config) Validate() error {
	if c.Host == "" {
		return NewConfigError("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return NewConfigError("port %d is outside 1-65535", c.Port)
	}
	if c.MinVersion == "" {
		return NewConfigError("minimum engine version must not be empty")
	}
	if c.MinDailyVersion == "" {
		return NewConfigError("minimum engine daily version must not be empty")
	}
	return nil
}

// EffectivePollInterval returns the poll interval, never below MinPollInterval
func (c *Config) EffectivePollInterval() time.Duration {
	if c.PollInterval < MinPollInterval {
		return MinPollInterval
	}
	return c.PollInterval
}

func defaultSnapshotDB() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "zapscan.db"
	}
	return filepath.Join(homeDir, ".zapscan", "snapshots.db")
}
