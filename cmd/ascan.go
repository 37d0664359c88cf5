package cmd

import (
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"github.com/spf13/cobra"
)

var (
	// Active scan command flags
	ascanInScopeOnly bool
	ascanPolicy      string
	ascanContextID   string
	ascanThreads     int
	ascanExclusions  []string
	ascanWait        bool
)

// ascanCmd is the command to run active scan jobs
var ascanCmd = &cobra.Command{
	Use:   "ascan",
	Short: "Run active scan jobs",
	Long: `Start, watch and stop engine active scans.
Findings are read with the alerts command.`,
}

// ascanStartCmd is the command to start an active scan
var ascanStartCmd = &cobra.Command{
	Use:   "start [url]",
	Short: "Start an active scan",
	Long: `Start an active scan of a URL.
Examples:
  zapscan ascan start http://target.local/
  zapscan ascan start http://target.local/ --policy Light --in-scope-only --wait
  zapscan ascan start http://target.local/ --context-id 1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := model.JobOptions{
			Exclusions:  ascanExclusions,
			ThreadCount: ascanThreads,
			InScopeOnly: ascanInScopeOnly,
			ScanPolicy:  ascanPolicy,
			ContextID:   ascanContextID,
		}

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		job, err := Container.ActiveScanService.Start(ctx, args[0], opts)
		if err != nil {
			exitWithError(err)
		}
		printJob(job)

		if ascanWait {
			waitForJob(ctx, Container.ActiveScanService, job.ID)
		}
	},
}

func init() {
	RootCmd.AddCommand(ascanCmd)
	ascanCmd.AddCommand(ascanStartCmd)
	ascanCmd.AddCommand(jobCommands("active scan", func() port.JobController { return Container.ActiveScanService })...)

	ascanStartCmd.Flags().BoolVar(&ascanInScopeOnly, "in-scope-only", false, "Only scan URLs in scope")
	ascanStartCmd.Flags().StringVar(&ascanPolicy, "policy", "", "Scan policy name")
	ascanStartCmd.Flags().StringVar(&ascanContextID, "context-id", "", "Scan within a context")
	ascanStartCmd.Flags().IntVar(&ascanThreads, "threads", 0, "Threads per host (0 keeps the engine setting)")
	ascanStartCmd.Flags().StringArrayVarP(&ascanExclusions, "exclude", "x", nil, "Regex of URLs to skip (repeatable)")
	ascanStartCmd.Flags().BoolVarP(&ascanWait, "wait", "w", false, "Wait for the scan to finish")
}
