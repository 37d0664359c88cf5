package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var eventPublishers []string

// eventsCmd is the command to follow engine events
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow engine events",
	Long: `Subscribe to engine event publishers and print events until interrupted.
Examples:
  zapscan events
  zapscan events --publisher org.zaproxy.zap.extension.alert.AlertEventPublisher`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		stream, err := Container.DialEvents(ctx)
		if err != nil {
			exitWithError(err)
		}
		defer stream.Close()

		if err := stream.Subscribe(ctx, eventPublishers...); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Following %s\n", strings.Join(eventPublishers, ", "))

		for {
			event, err := stream.Next(ctx)
			if errors.Is(err, context.Canceled) {
				return
			}
			if err != nil {
				exitWithError(err)
			}

			keys := make([]string, 0, len(event.Params))
			for k := range event.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			params := make([]string, 0, len(keys))
			for _, k := range keys {
				params = append(params, k+"="+event.Params[k])
			}
			fmt.Printf("%s %s %s %s\n", event.Publisher, event.Type, event.Target, strings.Join(params, " "))
		}
	},
}

func init() {
	RootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().StringArrayVar(&eventPublishers, "publisher", []string{
		"org.parosproxy.paros.extension.history.ProxyListenerLogEventPublisher",
		"org.zaproxy.zap.extension.alert.AlertEventPublisher",
		"org.zaproxy.zap.extension.spider.SpiderEventPublisher",
		"org.zaproxy.zap.extension.ascan.ActiveScanEventPublisher",
	}, "Event publisher to follow (repeatable)")
}
