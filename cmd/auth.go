package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	// Auth command flags
	authLoginURL    string
	authLoginData   string
	authHostname    string
	authRealm       string
	authPort        int
	authScript      string
	authScriptParam []string
	authLoggedOut   bool
	authForcedMode  bool
)

// authCmd is the command to configure context authentication
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Configure context authentication",
	Long:  `Configure how the engine logs in within a context and how it recognises a logged in session.`,
}

// authMethodsCmd is the command to list authentication methods
var authMethodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List supported authentication and session methods",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		methods, err := Container.AuthService.SupportedAuthMethods(ctx)
		if err != nil {
			exitWithError(err)
		}
		fmt.Println("Authentication methods:")
		for _, method := range methods {
			params, err := Container.AuthService.AuthMethodConfigParams(ctx, model.AuthMethodName(method))
			if err != nil {
				exitWithError(err)
			}
			fmt.Printf("  %s %s\n", method, formatParams(params))
		}

		sessions, err := Container.AuthService.SupportedSessionMethods(ctx)
		if err != nil {
			exitWithError(err)
		}
		fmt.Println("Session methods:")
		for _, method := range sessions {
			fmt.Printf("  %s\n", method)
		}
	},
}

// authShowCmd is the command to show the authentication of a context
var authShowCmd = &cobra.Command{
	Use:   "show [context-id]",
	Short: "Show the authentication of a context",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		contextID := args[0]

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		method, err := Container.AuthService.AuthMethod(ctx, contextID)
		if err != nil {
			exitWithError(err)
		}
		keys := make([]string, 0, len(method))
		for k := range method {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("Authentication:")
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, method[k])
		}

		loggedIn, err := Container.AuthService.LoggedInIndicator(ctx, contextID)
		if err != nil {
			exitWithError(err)
		}
		loggedOut, err := Container.AuthService.LoggedOutIndicator(ctx, contextID)
		if err != nil {
			exitWithError(err)
		}
		session, err := Container.AuthService.SessionMethod(ctx, contextID)
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("Logged in indicator: %s\n", loggedIn)
		fmt.Printf("Logged out indicator: %s\n", loggedOut)
		fmt.Printf("Session method: %s\n", session)
	},
}

// authSetCmd is the command to set the authentication method of a context
var authSetCmd = &cobra.Command{
	Use:   "set [context-id] [manual|form|http|script]",
	Short: "Set the authentication method of a context",
	Long: `Set the authentication method of a context.
Examples:
  zapscan auth set 1 form --login-url http://target.local/login --login-data 'user={%username%}&pass={%password%}'
  zapscan auth set 1 http --hostname target.local --realm private --auth-port 443
  zapscan auth set 1 script --script login.js --param Target=http://target.local`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var method model.AuthMethod
		switch args[1] {
		case "manual":
			method = model.ManualAuth{}
		case "form":
			method = model.FormBasedAuth{LoginURL: authLoginURL, LoginRequestData: authLoginData}
		case "http":
			method = model.HTTPAuth{Hostname: authHostname, Realm: authRealm, Port: authPort}
		case "script":
			params := make(map[string]string, len(authScriptParam))
			for _, p := range authScriptParam {
				k, v, ok := strings.Cut(p, "=")
				if !ok {
					exitWithError(model.NewUsageError("script parameter %q must be name=value", p))
				}
				params[k] = v
			}
			method = model.ScriptBasedAuth{ScriptName: authScript, Params: params}
		default:
			exitWithError(model.NewUsageError("unknown authentication method %q", args[1]))
		}

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.AuthService.SetAuthMethod(ctx, args[0], method); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Authentication of context %s set to %s\n", args[0], method.Name())
	},
}

// authIndicatorCmd is the command to set the logged in or logged out indicator
var authIndicatorCmd = &cobra.Command{
	Use:   "indicator [context-id] [regex]",
	Short: "Set the logged in indicator of a context",
	Long:  `Set the regex that marks a response as logged in, or logged out with --logged-out.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		var err error
		if authLoggedOut {
			err = Container.AuthService.SetLoggedOutIndicator(ctx, args[0], model.Regex(args[1]))
		} else {
			err = Container.AuthService.SetLoggedInIndicator(ctx, args[0], model.Regex(args[1]))
		}
		if err != nil {
			exitWithError(err)
		}
		fmt.Println("Indicator set")
	},
}

// authForcedUserCmd is the command to force every request to run as a user
var authForcedUserCmd = &cobra.Command{
	Use:   "forced-user [context-id] [user-id]",
	Short: "Set the forced user of a context",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.AuthService.SetForcedUser(ctx, args[0], args[1]); err != nil {
			exitWithError(err)
		}
		if cmd.Flags().Changed("mode") {
			if err := Container.AuthService.SetForcedUserModeEnabled(ctx, authForcedMode); err != nil {
				exitWithError(err)
			}
		}

		enabled, err := Container.AuthService.ForcedUserModeEnabled(ctx)
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("Forced user of context %s is %s (mode enabled: %t)\n", args[0], args[1], enabled)
	},
}

func formatParams(params []model.ConfigParam) string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		if p.Mandatory {
			names = append(names, p.Name+"*")
		} else {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func init() {
	RootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authMethodsCmd)
	authCmd.AddCommand(authShowCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authIndicatorCmd)
	authCmd.AddCommand(authForcedUserCmd)

	authSetCmd.Flags().StringVar(&authLoginURL, "login-url", "", "Form login URL")
	authSetCmd.Flags().StringVar(&authLoginData, "login-data", "", "Form login request body")
	authSetCmd.Flags().StringVar(&authHostname, "hostname", "", "HTTP authentication host")
	authSetCmd.Flags().StringVar(&authRealm, "realm", "", "HTTP authentication realm")
	authSetCmd.Flags().IntVar(&authPort, "auth-port", 0, "HTTP authentication port")
	authSetCmd.Flags().StringVar(&authScript, "script", "", "Authentication script name")
	authSetCmd.Flags().StringArrayVar(&authScriptParam, "param", nil, "Script parameter name=value (repeatable)")

	authIndicatorCmd.Flags().BoolVar(&authLoggedOut, "logged-out", false, "Set the logged out indicator instead")
	authForcedUserCmd.Flags().BoolVar(&authForcedMode, "mode", true, "Enable or disable forced user mode")
}
