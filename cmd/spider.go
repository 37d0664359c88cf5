package cmd

import (
	"fmt"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"github.com/spf13/cobra"
)

var (
	// Spider command flags
	spiderMaxDepth    int
	spiderSubmitForms bool
	spiderThreads     int
	spiderMaxChildren int
	spiderRecurse     bool
	spiderSubtreeOnly bool
	spiderContext     string
	spiderExclusions  []string
	spiderWait        bool
)

// spiderCmd is the command to run crawl jobs
var spiderCmd = &cobra.Command{
	Use:   "spider",
	Short: "Run spider crawl jobs",
	Long:  `Start, watch and stop the engine spider.`,
}

// spiderStartCmd is the command to start a crawl
var spiderStartCmd = &cobra.Command{
	Use:   "start [url]",
	Short: "Start a crawl",
	Long: `Start a spider crawl of a URL.
Examples:
  zapscan spider start http://target.local/
  zapscan spider start http://target.local/ --max-depth 3 --exclude '.*logout.*' --wait
  zapscan spider start http://target.local/app --context app --subtree-only`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := model.JobOptions{
			Exclusions:  spiderExclusions,
			MaxDepth:    spiderMaxDepth,
			ThreadCount: spiderThreads,
			MaxChildren: spiderMaxChildren,
			Recurse:     spiderRecurse,
			SubtreeOnly: spiderSubtreeOnly,
			ContextName: spiderContext,
		}
		if cmd.Flags().Changed("submit-forms") {
			opts.SubmitForms = &spiderSubmitForms
		}

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		job, err := Container.SpiderService.Start(ctx, args[0], opts)
		if err != nil {
			exitWithError(err)
		}
		printJob(job)

		if spiderWait {
			waitForJob(ctx, Container.SpiderService, job.ID)
		}
	},
}

// spiderResultsCmd is the command to list the URLs a crawl found
var spiderResultsCmd = &cobra.Command{
	Use:   "results [id]",
	Short: "List the URLs found by a crawl",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := jobID(args[0])

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		results, err := Container.SpiderService.Results(ctx, id)
		if err != nil {
			exitWithError(err)
		}
		for _, u := range results.URLs {
			fmt.Println(u)
		}
		if results.Partial {
			fmt.Printf("Crawl %d is still running, results are partial\n", id)
		}
	},
}

func init() {
	RootCmd.AddCommand(spiderCmd)
	spiderCmd.AddCommand(spiderStartCmd)
	spiderCmd.AddCommand(spiderResultsCmd)
	spiderCmd.AddCommand(jobCommands("spider", func() port.JobController { return Container.SpiderService })...)

	spiderStartCmd.Flags().IntVar(&spiderMaxDepth, "max-depth", 0, "Maximum link depth (0 keeps the engine setting)")
	spiderStartCmd.Flags().BoolVar(&spiderSubmitForms, "submit-forms", true, "Submit forms while crawling")
	spiderStartCmd.Flags().IntVar(&spiderThreads, "threads", 0, "Crawler threads (0 keeps the engine setting)")
	spiderStartCmd.Flags().IntVar(&spiderMaxChildren, "max-children", 0, "Maximum children crawled per node")
	spiderStartCmd.Flags().BoolVar(&spiderRecurse, "recurse", true, "Crawl below the URL")
	spiderStartCmd.Flags().BoolVar(&spiderSubtreeOnly, "subtree-only", false, "Stay within the URL subtree")
	spiderStartCmd.Flags().StringVar(&spiderContext, "context", "", "Crawl within a context")
	spiderStartCmd.Flags().StringArrayVarP(&spiderExclusions, "exclude", "x", nil, "Regex of URLs to skip (repeatable)")
	spiderStartCmd.Flags().BoolVarP(&spiderWait, "wait", "w", false, "Wait for the crawl to finish")
}
