package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
)

// ConfigKeys are the keys accepted by ConfigService.Set
var ConfigKeys = []string{
	"host", "port", "api_key", "min_version", "min_daily_version", "poll_interval",
	"log_level", "log_file", "log_format", "snapshot_db", "metrics_namespace",
}

// ConfigService is a service for managing configuration
type ConfigService struct {
	configRepo port.ConfigRepository
	logger     port.Logger
}

// NewConfigService creates a new ConfigService instance
func NewConfigService(configRepo port.ConfigRepository, logger port.Logger) *ConfigService {
	return &ConfigService{
		configRepo: configRepo,
		logger:     logger,
	}
}

// LoadConfig loads configuration from a file
func (s *ConfigService) LoadConfig(configPath string) (*model.Config, error) {
	// If configPath is empty, use the default path
	if configPath == "" {
		var err error
		configPath, err = s.configRepo.GetDefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default path: %w", err)
		}
	}

	config, err := s.configRepo.Load(configPath)
	if err != nil {
		s.logger.Warn("Failed to load configuration from %s: %v", configPath, err)
		// Return default configuration if loading fails
		return model.NewConfig(), nil
	}

	s.logger.Debug("Configuration loaded from %s", configPath)
	return config, nil
}

// SaveConfig saves configuration to a file
func (s *ConfigService) SaveConfig(config *model.Config, configPath string) error {
	if configPath == "" {
		var err error
		configPath, err = s.configRepo.GetDefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get default path: %w", err)
		}
	}

	if err := s.configRepo.Save(config, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	s.logger.Info("Configuration saved to %s", configPath)
	return nil
}

// SetHost sets the engine API host
func (s *ConfigService) SetHost(config *model.Config, host string) {
	config.Host = host
}

// SetPort sets the engine API port
func (s *ConfigService) SetPort(config *model.Config, port int) {
	config.Port = port
}

// SetAPIKey sets the engine API key
func (s *ConfigService) SetAPIKey(config *model.Config, apiKey string) {
	config.APIKey = apiKey
}

// SetLogLevel sets the log level
func (s *ConfigService) SetLogLevel(config *model.Config, logLevel string) {
	config.LogLevel = model.LogLevel(logLevel)
}

// SetLogFile sets the log file
func (s *ConfigService) SetLogFile(config *model.Config, logFile string) {
	config.LogFile = logFile
}

// Set assigns one configuration key from its text form
func (s *ConfigService) Set(config *model.Config, key, value string) error {
	switch key {
	case "host":
		s.SetHost(config, value)
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return model.NewConfigError("invalid port %q", value)
		}
		s.SetPort(config, port)
	case "api_key":
		s.SetAPIKey(config, value)
	case "min_version":
		config.MinVersion = value
	case "min_daily_version":
		config.MinDailyVersion = value
	case "poll_interval":
		interval, err := time.ParseDuration(value)
		if err != nil {
			return model.NewConfigError("invalid poll interval %q: %v", value, err)
		}
		config.PollInterval = interval
	case "log_level":
		s.SetLogLevel(config, value)
	case "log_file":
		s.SetLogFile(config, value)
	case "log_format":
		config.LogFormat = model.LogFormat(value)
	case "snapshot_db":
		config.SnapshotDB = value
	case "metrics_namespace":
		config.MetricsNamespace = value
	default:
		return model.NewConfigError("unknown configuration key %q", key)
	}
	return config.Validate()
}
