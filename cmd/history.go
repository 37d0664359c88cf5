package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/service"
	"github.com/spf13/cobra"
)

var (
	// History command flags
	historyStart      int
	historyEnd        int
	historyJSON       bool
	historyResponses  bool
	replayCookies     []string
	replayFollow      bool
	clearSessionName  string
	clearOverwrite    bool
	snapshotLabel     string
	snapshotAlertView bool
)

// historyCmd is the command to read the engine traffic archive
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Read and replay recorded traffic",
	Long:  `Read, search and replay the traffic recorded by the engine.`,
}

// historyListCmd is the command to list recorded traffic
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded traffic",
	Long: `List the recorded traffic, optionally a [start, end) window of it.
Examples:
  zapscan history list
  zapscan history list --start 10 --end 20
  zapscan history list --json > history.json`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		entries, err := Container.HistoryService.History(ctx, historyRange(cmd))
		if err != nil {
			exitWithError(err)
		}
		printEntries(entries)
	},
}

// historyCountCmd is the command to count recorded traffic
var historyCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count recorded traffic",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		count, err := Container.HistoryService.Count(ctx)
		if err != nil {
			exitWithError(err)
		}
		fmt.Println(count)
	},
}

// historySearchCmd is the command to search recorded traffic
var historySearchCmd = &cobra.Command{
	Use:   "search [regex]",
	Short: "Search recorded traffic",
	Long: `Search the recorded requests, or responses with --responses, for a regular expression.
Base64 encoded response bodies are decoded before matching.
Examples:
  zapscan history search 'Authorization: Bearer'
  zapscan history search --responses 'stack trace'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		var (
			entries []model.TrafficEntry
			err     error
		)
		if historyResponses {
			entries, err = Container.HistoryService.FindInResponseHistory(ctx, args[0])
		} else {
			entries, err = Container.HistoryService.FindInRequestHistory(ctx, args[0])
		}
		if err != nil {
			exitWithError(err)
		}
		printEntries(entries)
	},
}

// historyReplayCmd is the command to resend a recorded request
var historyReplayCmd = &cobra.Command{
	Use:   "replay [index]",
	Short: "Resend a recorded request",
	Long: `Resend the recorded request at a 0-based index through the engine, optionally
with cookies changed first.
Examples:
  zapscan history replay 3
  zapscan history replay 3 --cookie JSESSIONID=abc --follow`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := parseIndex(args[0])
		if err != nil {
			exitWithError(err)
		}

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		entries, err := Container.HistoryService.History(ctx, &model.Range{Start: index, End: index + 1})
		if err != nil {
			exitWithError(err)
		}
		if len(entries) == 0 {
			exitWithError(model.NewNotFoundError("history", "replay", "no entry at index %d", index))
		}

		req := entries[0].Request
		for _, cookie := range replayCookies {
			name, value, ok := strings.Cut(cookie, "=")
			if !ok {
				exitWithError(model.NewUsageError("cookie %q must be name=value", cookie))
			}
			req = service.ChangeCookieValue(req, name, value)
		}

		replayed, err := Container.HistoryService.Replay(ctx, req, replayFollow)
		if err != nil {
			exitWithError(err)
		}
		printEntries(replayed)
	},
}

// historyClearCmd is the command to start a fresh engine session
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Start a new engine session",
	Long:  `Stop and remove all jobs and start a new engine session, discarding the recorded traffic.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		opts := model.NewSessionOptions{Name: clearSessionName, Overwrite: clearOverwrite}
		if err := Container.HistoryService.Clear(ctx, opts); err != nil {
			exitWithError(err)
		}
		fmt.Println("New session started")
	},
}

// historySnapshotCmd groups the local snapshot commands
var historySnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Keep local snapshots of traffic and alerts",
	Long:  `Capture the engine traffic and alerts into the local snapshot database and read them back.`,
}

// snapshotCaptureCmd is the command to capture a snapshot
var snapshotCaptureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)
		openSnapshots()

		snap, err := Container.SnapshotService.Capture(ctx, snapshotLabel)
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("Snapshot %s captured: %d entries, %d alerts\n", snap.ID, snap.EntryCount, snap.AlertCount)
	},
}

// snapshotListCmd is the command to list snapshots
var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots",
	Run: func(cmd *cobra.Command, args []string) {
		openSnapshots()

		snapshots, err := Container.SnapshotStore.List(cmd.Context())
		if err != nil {
			exitWithError(err)
		}
		if len(snapshots) == 0 {
			fmt.Println("No snapshots")
			return
		}
		for _, snap := range snapshots {
			fmt.Printf("%s  %s  %-12s engine %s  %d entries  %d alerts\n",
				snap.ID, snap.CreatedAt.Local().Format("2006-01-02 15:04:05"), snap.Label,
				snap.EngineVersion, snap.EntryCount, snap.AlertCount)
		}
	},
}

// snapshotShowCmd is the command to read one snapshot
var snapshotShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the entries or alerts of a snapshot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		openSnapshots()

		if snapshotAlertView {
			alerts, err := Container.SnapshotStore.Alerts(cmd.Context(), args[0])
			if err != nil {
				exitWithError(err)
			}
			printAlerts(alerts)
			return
		}

		entries, err := Container.SnapshotStore.Entries(cmd.Context(), args[0])
		if err != nil {
			exitWithError(err)
		}
		printEntries(entries)
	},
}

// historyRange returns the window selected by --start and --end, or nil for all
func historyRange(cmd *cobra.Command) *model.Range {
	if !cmd.Flags().Changed("start") && !cmd.Flags().Changed("end") {
		return nil
	}
	rng := &model.Range{Start: historyStart, End: historyEnd}
	if !cmd.Flags().Changed("end") {
		rng.End = math.MaxInt
	}
	return rng
}

// openSnapshots opens the snapshot database, exiting on failure
func openSnapshots() {
	if err := Container.OpenSnapshots(); err != nil {
		exitWithError(err)
	}
}

// printEntries prints traffic entries one per line, or as JSON with --json
func printEntries(entries []model.TrafficEntry) {
	if historyJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(entries); err != nil {
			exitWithError(err)
		}
		return
	}

	if len(entries) == 0 {
		fmt.Println("No traffic")
		return
	}
	for _, entry := range entries {
		status := "---"
		if entry.Completed() {
			status = fmt.Sprintf("%d", entry.Response.Status)
		}
		fmt.Printf("%6d  %-7s %s  %s\n", entry.MessageID, entry.Request.Method, status, entry.Request.URL)
	}
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil || index < 0 {
		return 0, model.NewUsageError("index %q must be a non-negative number", s)
	}
	return index, nil
}

func init() {
	RootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyCountCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyReplayCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historySnapshotCmd)
	historySnapshotCmd.AddCommand(snapshotCaptureCmd)
	historySnapshotCmd.AddCommand(snapshotListCmd)
	historySnapshotCmd.AddCommand(snapshotShowCmd)

	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "Print entries as HAR JSON")

	historyListCmd.Flags().IntVar(&historyStart, "start", 0, "First entry, 0-based")
	historyListCmd.Flags().IntVar(&historyEnd, "end", 0, "Entry after the last one")

	historySearchCmd.Flags().BoolVar(&historyResponses, "responses", false, "Search responses instead of requests")

	historyReplayCmd.Flags().StringArrayVar(&replayCookies, "cookie", nil, "Change a cookie before sending, name=value (repeatable)")
	historyReplayCmd.Flags().BoolVar(&replayFollow, "follow", false, "Follow redirects")

	historyClearCmd.Flags().StringVar(&clearSessionName, "name", "", "Name of the new session")
	historyClearCmd.Flags().BoolVar(&clearOverwrite, "overwrite", false, "Overwrite an existing session with the same name")

	snapshotCaptureCmd.Flags().StringVarP(&snapshotLabel, "label", "l", "", "Snapshot label")
	snapshotShowCmd.Flags().BoolVar(&snapshotAlertView, "alerts", false, "Show the alerts instead of the traffic")
}
