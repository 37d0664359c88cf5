package cmd

import (
	"fmt"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/application/service"
	"github.com/spf13/cobra"
)

// configCmd is the command to manage configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage zapscan configuration.`,
}

// configShowCmd is the command to display configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration",
	Long:  `Display zapscan configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := Container.Config

		fmt.Println("zapscan Configuration:")
		fmt.Printf("Host: %s\n", config.Host)
		fmt.Printf("Port: %d\n", config.Port)
		fmt.Printf("API Key: %s\n", maskString(config.APIKey))
		fmt.Printf("Min Version: %s\n", config.MinVersion)
		fmt.Printf("Min Daily Version: %s\n", config.MinDailyVersion)
		fmt.Printf("Poll Interval: %s\n", config.PollInterval)
		fmt.Printf("Log Level: %s\n", config.LogLevel)
		fmt.Printf("Log File: %s\n", config.LogFile)
		fmt.Printf("Log Format: %s\n", config.LogFormat)
		fmt.Printf("Snapshot DB: %s\n", config.SnapshotDB)
		fmt.Printf("Metrics Namespace: %s\n", config.MetricsNamespace)
	},
}

// configSetCmd is the command to set configuration
var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set configuration",
	Long: `Set zapscan configuration.
Keys: ` + strings.Join(service.ConfigKeys, ", ") + `
Examples:
  zapscan config set host 127.0.0.1
  zapscan config set port 8090
  zapscan config set api_key my-key
  zapscan config set poll_interval 2s
  zapscan config set log_file /path/to/log.txt`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		// Update configuration
		if err := Container.ConfigService.Set(Container.Config, key, value); err != nil {
			exitWithError(err)
		}

		// Save configuration
		if err := Container.ConfigService.SaveConfig(Container.Config, ConfigPath); err != nil {
			exitWithError(fmt.Errorf("failed to save configuration: %w", err))
		}

		if key == "api_key" {
			value = maskString(value)
		}
		fmt.Printf("Configuration %s successfully changed to %s\n", key, value)
	},
}

// maskString hides part of a string
func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
