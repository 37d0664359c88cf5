package cmd

import (
	"fmt"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	// Scanner command flags
	scannerPolicy    string
	scannerStrength  string
	scannerThreshold string
	scannerAll       bool

	// Script command flags
	scriptType        string
	scriptEngine      string
	scriptFile        string
	scriptDescription string
)

// scannersCmd is the command to tune the scan rules
var scannersCmd = &cobra.Command{
	Use:   "scanners",
	Short: "Tune active and passive scan rules",
}

// scannersListCmd is the command to list active scan rules
var scannersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active scan rules",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		scanners, err := Container.ScannerPolicyService.Scanners(ctx, scannerPolicy)
		if err != nil {
			exitWithError(err)
		}
		for _, s := range scanners {
			state := "on"
			if !s.Enabled {
				state = "off"
			}
			fmt.Printf("%6s  %-3s  %-8s %-8s %s\n", s.ID, state, s.AttackStrength, s.AlertThreshold, s.Name)
		}
	},
}

// scannersEnableCmd is the command to enable scan rules
var scannersEnableCmd = &cobra.Command{
	Use:   "enable [id...]",
	Short: "Enable active scan rules",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		var err error
		if scannerAll {
			err = Container.ScannerPolicyService.EnableAllScanners(ctx, scannerPolicy)
		} else {
			err = Container.ScannerPolicyService.EnableScanners(ctx, args...)
		}
		if err != nil {
			exitWithError(err)
		}
		fmt.Println("Scanners enabled")
	},
}

// scannersDisableCmd is the command to disable scan rules
var scannersDisableCmd = &cobra.Command{
	Use:   "disable [id...]",
	Short: "Disable active scan rules",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		var err error
		if scannerAll {
			err = Container.ScannerPolicyService.DisableAllScanners(ctx, scannerPolicy)
		} else {
			err = Container.ScannerPolicyService.DisableScanners(ctx, args...)
		}
		if err != nil {
			exitWithError(err)
		}
		fmt.Println("Scanners disabled")
	},
}

// scannersTuneCmd is the command to set the strength and threshold of a rule
var scannersTuneCmd = &cobra.Command{
	Use:   "tune [id]",
	Short: "Set the attack strength or alert threshold of a rule",
	Long: `Set the attack strength or alert threshold of an active scan rule.
Examples:
  zapscan scanners tune 40012 --strength HIGH --threshold LOW --policy Default`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if scannerStrength == "" && scannerThreshold == "" {
			exitWithError(model.NewUsageError("--strength or --threshold is required"))
		}

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if scannerStrength != "" {
			if err := Container.ScannerPolicyService.SetAttackStrength(ctx, args[0], scannerStrength, scannerPolicy); err != nil {
				exitWithError(err)
			}
		}
		if scannerThreshold != "" {
			if err := Container.ScannerPolicyService.SetAlertThreshold(ctx, args[0], scannerThreshold, scannerPolicy); err != nil {
				exitWithError(err)
			}
		}
		fmt.Printf("Scanner %s updated\n", args[0])
	},
}

// scannersPassiveCmd is the command to switch passive scanning
var scannersPassiveCmd = &cobra.Command{
	Use:       "passive [on|off]",
	Short:     "Switch passive scanning on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	Run: func(cmd *cobra.Command, args []string) {
		enabled := onOff(args[0])

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ScannerPolicyService.SetPassiveScanEnabled(ctx, enabled); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Passive scanning %s\n", args[0])
	},
}

// scannersCSRFCmd is the command to switch anti-CSRF token handling during active scans
var scannersCSRFCmd = &cobra.Command{
	Use:       "handle-acsrf [on|off]",
	Short:     "Switch anti-CSRF token handling during active scans",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	Run: func(cmd *cobra.Command, args []string) {
		enabled := onOff(args[0])

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ScannerPolicyService.SetHandleAntiCSRFTokens(ctx, enabled); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Anti-CSRF token handling %s\n", args[0])
	},
}

// shutdownCmd is the command to shut the engine down
var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Shut the engine down",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ScannerPolicyService.Shutdown(ctx); err != nil {
			exitWithError(err)
		}
		fmt.Println("Engine shutting down")
	},
}

// scriptsCmd is the command to manage engine scripts
var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "Manage engine scripts",
}

// scriptsListCmd is the command to list loaded scripts and script engines
var scriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scripts and script engines",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		engines, err := Container.ScriptService.Engines(ctx)
		if err != nil {
			exitWithError(err)
		}
		scripts, err := Container.ScriptService.Scripts(ctx)
		if err != nil {
			exitWithError(err)
		}

		fmt.Println("Engines:")
		for _, engine := range engines {
			fmt.Printf("  %s\n", engine)
		}
		fmt.Println("Scripts:")
		for _, s := range scripts {
			marker := ""
			if s.Error {
				marker = " (error)"
			}
			fmt.Printf("  %-24s %-16s %s%s\n", s.Name, s.Type, s.Engine, marker)
		}
	},
}

// scriptsLoadCmd is the command to load a script file
var scriptsLoadCmd = &cobra.Command{
	Use:   "load [name]",
	Short: "Load a script",
	Long: `Load a script file into the engine.
Examples:
  zapscan scripts load login.js --type authentication --engine "ECMAScript : Oracle Nashorn" --file /scripts/login.js`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		script := model.ScriptSpec{
			Name:        args[0],
			Type:        scriptType,
			Engine:      scriptEngine,
			FileName:    scriptFile,
			Description: scriptDescription,
		}

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ScriptService.Load(ctx, script); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Script %s loaded\n", args[0])
	},
}

// scriptsRemoveCmd is the command to remove a script
var scriptsRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a script",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ScriptService.Remove(ctx, args[0]); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Script %s removed\n", args[0])
	},
}

// scriptsRunCmd is the command to run a stand-alone script
var scriptsRunCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Run a stand-alone script",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ScriptService.RunStandAlone(ctx, args[0]); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Script %s started\n", args[0])
	},
}

func onOff(arg string) bool {
	switch arg {
	case "on":
		return true
	case "off":
		return false
	}
	exitWithError(model.NewUsageError("expected on or off, got %q", arg))
	return false
}

func init() {
	RootCmd.AddCommand(scannersCmd)
	scannersCmd.AddCommand(scannersListCmd)
	scannersCmd.AddCommand(scannersEnableCmd)
	scannersCmd.AddCommand(scannersDisableCmd)
	scannersCmd.AddCommand(scannersTuneCmd)
	scannersCmd.AddCommand(scannersPassiveCmd)
	scannersCmd.AddCommand(scannersCSRFCmd)
	RootCmd.AddCommand(shutdownCmd)

	RootCmd.AddCommand(scriptsCmd)
	scriptsCmd.AddCommand(scriptsListCmd)
	scriptsCmd.AddCommand(scriptsLoadCmd)
	scriptsCmd.AddCommand(scriptsRemoveCmd)
	scriptsCmd.AddCommand(scriptsRunCmd)

	scannersCmd.PersistentFlags().StringVar(&scannerPolicy, "policy", "", "Scan policy name (default policy when empty)")
	scannersEnableCmd.Flags().BoolVar(&scannerAll, "all", false, "Apply to every rule")
	scannersDisableCmd.Flags().BoolVar(&scannerAll, "all", false, "Apply to every rule")
	scannersTuneCmd.Flags().StringVar(&scannerStrength, "strength", "", "Attack strength (LOW, MEDIUM, HIGH, INSANE, DEFAULT)")
	scannersTuneCmd.Flags().StringVar(&scannerThreshold, "threshold", "", "Alert threshold (OFF, LOW, MEDIUM, HIGH, DEFAULT)")

	scriptsLoadCmd.Flags().StringVarP(&scriptType, "type", "t", "", "Script type, e.g. authentication or standalone")
	scriptsLoadCmd.Flags().StringVarP(&scriptEngine, "engine", "e", "", "Script engine name")
	scriptsLoadCmd.Flags().StringVarP(&scriptFile, "file", "f", "", "Script file path on the engine host")
	scriptsLoadCmd.Flags().StringVar(&scriptDescription, "description", "", "Script description")
}
