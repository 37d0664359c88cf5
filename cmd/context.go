package cmd

import (
	"fmt"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	// Context command flags
	contextOutOfScope bool
	contextSubtree    bool
)

// contextCmd is the command to manage scan contexts
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage contexts",
	Long:  `Create contexts and manage the URL patterns that put traffic in or out of them.`,
}

// contextCreateCmd is the command to create a context
var contextCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a context",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		created, err := Container.ContextService.CreateContext(ctx, args[0], !contextOutOfScope)
		if err != nil {
			exitWithError(err)
		}
		printContext(created)
	},
}

// contextListCmd is the command to list contexts
var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contexts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		names, err := Container.ContextService.Contexts(ctx)
		if err != nil {
			exitWithError(err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

// contextInfoCmd is the command to show a context
var contextInfoCmd = &cobra.Command{
	Use:   "info [name]",
	Short: "Show a context",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		info, err := Container.ContextService.ContextInfo(ctx, args[0])
		if err != nil {
			exitWithError(err)
		}
		printContext(info)
	},
}

// contextIncludeCmd is the command to add an include pattern
var contextIncludeCmd = &cobra.Command{
	Use:   "include [name] [pattern]",
	Short: "Include URLs in a context",
	Long: `Include URLs matching a regex in a context, or with --subtree every URL below a URL.
Examples:
  zapscan context include app 'http://target\.local/app/.*'
  zapscan context include app http://target.local/app --subtree`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ContextService.Include(ctx, args[0], scopePattern(args[1])); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Included %s in context %s\n", args[1], args[0])
	},
}

// contextExcludeCmd is the command to add an exclude pattern
var contextExcludeCmd = &cobra.Command{
	Use:   "exclude [name] [pattern]",
	Short: "Exclude URLs from a context",
	Long: `Exclude URLs matching a regex from a context, or with --subtree every URL below a URL.
Examples:
  zapscan context exclude app '.*logout.*'
  zapscan context exclude app http://target.local/app/static --subtree`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ContextService.Exclude(ctx, args[0], scopePattern(args[1])); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Excluded %s from context %s\n", args[1], args[0])
	},
}

// acsrfCmd is the command to manage anti-CSRF token names
var acsrfCmd = &cobra.Command{
	Use:   "acsrf",
	Short: "Manage anti-CSRF token names",
	Long:  `Manage the form field names the engine treats as anti-CSRF tokens.`,
}

// acsrfListCmd is the command to list anti-CSRF token names
var acsrfListCmd = &cobra.Command{
	Use:   "list",
	Short: "List anti-CSRF token names",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		tokens, err := Container.ContextService.AntiForgeryTokens(ctx)
		if err != nil {
			exitWithError(err)
		}
		for _, token := range tokens {
			fmt.Println(token)
		}
	},
}

// acsrfAddCmd is the command to add an anti-CSRF token name
var acsrfAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an anti-CSRF token name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ContextService.AddAntiForgeryToken(ctx, args[0]); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Token %s added\n", args[0])
	},
}

// acsrfRemoveCmd is the command to remove an anti-CSRF token name
var acsrfRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove an anti-CSRF token name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.ContextService.RemoveAntiForgeryToken(ctx, args[0]); err != nil {
			exitWithError(err)
		}
		fmt.Printf("Token %s removed\n", args[0])
	},
}

func scopePattern(arg string) model.ScopePattern {
	if contextSubtree {
		return model.URLTree(arg)
	}
	return model.Regex(arg)
}

func printContext(c model.Context) {
	fmt.Printf("Context: %s (id %s)\n", c.Name, c.ID)
	fmt.Printf("In scope: %t\n", c.InScope)
	fmt.Printf("Include: %s\n", strings.Join(c.IncludePatterns, ", "))
	fmt.Printf("Exclude: %s\n", strings.Join(c.ExcludePatterns, ", "))
}

func init() {
	RootCmd.AddCommand(contextCmd)
	contextCmd.AddCommand(contextCreateCmd)
	contextCmd.AddCommand(contextListCmd)
	contextCmd.AddCommand(contextInfoCmd)
	contextCmd.AddCommand(contextIncludeCmd)
	contextCmd.AddCommand(contextExcludeCmd)

	RootCmd.AddCommand(acsrfCmd)
	acsrfCmd.AddCommand(acsrfListCmd)
	acsrfCmd.AddCommand(acsrfAddCmd)
	acsrfCmd.AddCommand(acsrfRemoveCmd)

	contextCreateCmd.Flags().BoolVar(&contextOutOfScope, "out-of-scope", false, "Create the context out of scope")
	contextIncludeCmd.Flags().BoolVar(&contextSubtree, "subtree", false, "Treat the pattern as a URL subtree")
	contextExcludeCmd.Flags().BoolVar(&contextSubtree, "subtree", false, "Treat the pattern as a URL subtree")
}
