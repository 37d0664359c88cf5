package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	// Alerts command flags
	alertsStart  int
	alertsEnd    int
	alertsFormat string
	alertsOutput string
)

// alertsCmd is the command to read findings
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Read findings and reports",
	Long:  `Read the alerts raised by the engine and render reports.`,
}

// alertsListCmd is the command to list alerts
var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts",
	Long: `List alerts, optionally a [start, end) window of them.
Examples:
  zapscan alerts list
  zapscan alerts list --start 0 --end 50`,
	Run: func(cmd *cobra.Command, args []string) {
		var rng *model.Range
		if cmd.Flags().Changed("start") || cmd.Flags().Changed("end") {
			rng = &model.Range{Start: alertsStart, End: alertsEnd}
			if !cmd.Flags().Changed("end") {
				rng.End = math.MaxInt
			}
		}

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		alerts, err := Container.AlertService.Alerts(ctx, rng)
		if err != nil {
			exitWithError(err)
		}
		printAlerts(alerts)
	},
}

// alertsCountCmd is the command to count alerts
var alertsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count alerts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		count, err := Container.AlertService.Count(ctx)
		if err != nil {
			exitWithError(err)
		}
		fmt.Println(count)
	},
}

// alertsDeleteCmd is the command to delete every alert
var alertsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every alert",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.AlertService.DeleteAll(ctx); err != nil {
			exitWithError(err)
		}
		fmt.Println("Alerts deleted")
	},
}

// alertsReportCmd is the command to render a report
var alertsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an alert report",
	Long: `Render the engine report as XML or HTML, to stdout or a file.
Examples:
  zapscan alerts report --format html --output report.html`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		report, err := Container.AlertService.Report(ctx, model.ReportFormat(alertsFormat))
		if err != nil {
			exitWithError(err)
		}

		if alertsOutput == "" {
			_, _ = os.Stdout.Write(report)
			return
		}
		if err := os.WriteFile(alertsOutput, report, 0644); err != nil {
			exitWithError(fmt.Errorf("failed to write report: %w", err))
		}
		fmt.Printf("Report written to %s\n", alertsOutput)
	},
}

func printAlerts(alerts []model.Alert) {
	if len(alerts) == 0 {
		fmt.Println("No alerts")
		return
	}
	for _, alert := range alerts {
		fmt.Printf("%-6s %-13s %s\n", alert.Risk, alert.Confidence, alert.Name)
		fmt.Printf("       %s", alert.URL)
		if alert.Param != "" {
			fmt.Printf(" [%s]", alert.Param)
		}
		fmt.Println()
	}
}

func init() {
	RootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsCountCmd)
	alertsCmd.AddCommand(alertsDeleteCmd)
	alertsCmd.AddCommand(alertsReportCmd)

	alertsListCmd.Flags().IntVar(&alertsStart, "start", 0, "First alert, 0-based")
	alertsListCmd.Flags().IntVar(&alertsEnd, "end", 0, "Alert after the last one")

	alertsReportCmd.Flags().StringVarP(&alertsFormat, "format", "f", string(model.ReportXML), "Report format (xml, html)")
	alertsReportCmd.Flags().StringVarP(&alertsOutput, "output", "o", "", "Write the report to a file")
}
