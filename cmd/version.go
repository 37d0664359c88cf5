package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the application version
const Version = "1.0.0"

var versionEngine bool

// versionCmd is the command to display version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Long:  `Display zapscan version and, with --engine, the connected engine version and its protocol capabilities.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("zapscan v%s\n", Version)
		if !versionEngine {
			return
		}

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		caps := Container.Engine.Capabilities()
		fmt.Printf("Engine: %s\n", Container.Engine.Version())
		fmt.Printf("Capability row: %s\n", caps.Release)
		fmt.Printf("  HAR export: %s/%s\n", caps.HARComponent, caps.HARExport)
		fmt.Printf("  Scan id in start response: %t\n", caps.ScanIDInStart)
		fmt.Printf("  Spider contexts: %t\n", caps.SpiderContext)
		fmt.Printf("  Active scan contexts: %t\n", caps.ActiveScanContext)
		fmt.Printf("  API key header: %t\n", caps.APIKeyHeader)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionEngine, "engine", false, "Also query the engine version")
}
