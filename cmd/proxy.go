package cmd

import (
	"fmt"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/spf13/cobra"
)

// proxyCmd is the command to describe the engine proxy
var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Describe the engine proxy",
}

// proxyPACCmd is the command to print the proxy addresses for browsers
var proxyPACCmd = &cobra.Command{
	Use:   "pac",
	Short: "Print the proxy and PAC URL",
	Long:  `Print the proxy address and the proxy auto-config URL a browser can be pointed at.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := Container.Config.Validate(); err != nil {
			exitWithError(err)
		}
		descriptor := model.NewProxyDescriptor(Container.Config.Host, Container.Config.Port)
		fmt.Printf("HTTP proxy: %s\n", descriptor.HTTPProxy)
		fmt.Printf("PAC URL: %s\n", descriptor.PACURL)
	},
}

func init() {
	RootCmd.AddCommand(proxyCmd)
	proxyCmd.AddCommand(proxyPACCmd)
}
