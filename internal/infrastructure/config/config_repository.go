package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ZAPSCAN_API_KEY
const EnvPrefix = "ZAPSCAN"

// ConfigRepository is an implementation of port.ConfigRepository
type ConfigRepository struct{}

// NewConfigRepository creates a new ConfigRepository instance
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

// Load loads configuration from file. A missing file yields the defaults,
// environment variables override both.
func (r *ConfigRepository) Load(configPath string) (*model.Config, error) {
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return nil, err
		}
	}

	v := newViper(model.NewConfig())
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := &model.Config{
		Host:             v.GetString("host"),
		Port:             v.GetInt("port"),
		APIKey:           v.GetString("api_key"),
		MinVersion:       v.GetString("min_version"),
		MinDailyVersion:  v.GetString("min_daily_version"),
		PollInterval:     v.GetDuration("poll_interval"),
		LogLevel:         model.LogLevel(v.GetString("log_level")),
		LogFile:          v.GetString("log_file"),
		LogFormat:        model.LogFormat(v.GetString("log_format")),
		SnapshotDB:       v.GetString("snapshot_db"),
		MetricsNamespace: v.GetString("metrics_namespace"),
	}
	return config, nil
}

// Save saves configuration to file
func (r *ConfigRepository) Save(config *model.Config, configPath string) error {
	if configPath == "" {
		var err error
		configPath, err = r.GetDefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.Set("host", config.Host)
	v.Set("port", config.Port)
	v.Set("api_key", config.APIKey)
	v.Set("min_version", config.MinVersion)
	v.Set("min_daily_version", config.MinDailyVersion)
	v.Set("poll_interval", config.PollInterval.String())
	v.Set("log_level", string(config.LogLevel))
	v.Set("log_file", config.LogFile)
	v.Set("log_format", string(config.LogFormat))
	v.Set("snapshot_db", config.SnapshotDB)
	v.Set("metrics_namespace", config.MetricsNamespace)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}
	return nil
}

// GetDefaultPath returns the default path for configuration file
func (r *ConfigRepository) GetDefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".zapscan", "config.yaml"), nil
}

func newViper(defaults *model.Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("host", defaults.Host)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("api_key", defaults.APIKey)
	v.SetDefault("min_version", defaults.MinVersion)
	v.SetDefault("min_daily_version", defaults.MinDailyVersion)
	v.SetDefault("poll_interval", defaults.PollInterval)
	v.SetDefault("log_level", string(defaults.LogLevel))
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("log_format", string(defaults.LogFormat))
	v.SetDefault("snapshot_db", defaults.SnapshotDB)
	v.SetDefault("metrics_namespace", defaults.MetricsNamespace)
	return v
}

// Ensure ConfigRepository implements port.ConfigRepository
var _ port.ConfigRepository = (*ConfigRepository)(nil)
