package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haxorport/zapscan-go-client/internal/di"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	// Container is the dependency injection container
	Container *di.Container

	// ConfigPath is the path to the configuration file
	ConfigPath string

	// LogLevel is the logging level
	LogLevel string

	// Engine address overrides
	engineHost   string
	enginePort   int
	engineAPIKey string

	// MetricsAddr exposes engine call metrics when set
	MetricsAddr string

	// RootCmd is the root command for CLI
	RootCmd = &cobra.Command{
		Use:   "zapscan",
		Short: "zapscan - security engine control client",
		Long: `zapscan drives a running ZAP security engine over its HTTP API.
It reads the recorded traffic, starts and watches spider and active scan jobs,
manages contexts, users and authentication, and collects alerts and reports.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize container
			Container = di.NewContainer()

			if err := Container.Initialize(ConfigPath, flagOverrides(cmd)); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}

			if MetricsAddr != "" {
				Container.ServeMetrics(MetricsAddr)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			// Close container
			if Container != nil {
				Container.Close()
			}
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// flagOverrides applies the global flags the user set on top of the loaded configuration
func flagOverrides(cmd *cobra.Command) func(*model.Config) {
	flags := cmd.Flags()
	return func(config *model.Config) {
		if flags.Changed("log-level") {
			config.LogLevel = model.LogLevel(LogLevel)
		}
		if flags.Changed("host") {
			config.Host = engineHost
		}
		if flags.Changed("port") {
			config.Port = enginePort
		}
		if flags.Changed("api-key") {
			config.APIKey = engineAPIKey
		}
	}
}

// commandContext returns a context that is cancelled on interrupt
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// connect checks the engine and wires the engine services, exiting on failure
func connect(ctx context.Context) {
	if err := Container.Connect(ctx); err != nil {
		exitWithError(err)
	}
}

// exitWithError prints err the way every command does and exits with status 1
func exitWithError(err error) {
	fmt.Printf("Error: %v\n", err)
	if Container != nil {
		Container.Close()
	}
	os.Exit(1)
}

func init() {
	// Add global flags
	RootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "Path to configuration file (default: ~/.zapscan/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "warn", "Set logging level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&engineHost, "host", "", "Engine API host (overrides configuration)")
	RootCmd.PersistentFlags().IntVar(&enginePort, "port", 0, "Engine API port (overrides configuration)")
	RootCmd.PersistentFlags().StringVar(&engineAPIKey, "api-key", "", "Engine API key (overrides configuration)")
	RootCmd.PersistentFlags().StringVar(&MetricsAddr, "metrics-addr", "", "Serve engine call metrics on this address, e.g. :9090")
}
