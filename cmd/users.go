package cmd

import (
	"fmt"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/spf13/cobra"
)

var (
	// Users command flags
	userUsername string
	userPassword string
	userDisabled bool
)

// usersCmd is the command to manage context users
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage context users",
	Long:  `Manage the users the engine authenticates as within a context.`,
}

// usersListCmd is the command to list users
var usersListCmd = &cobra.Command{
	Use:   "list [context-id]",
	Short: "List the users of a context",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		users, err := Container.AuthService.Users(ctx, args[0])
		if err != nil {
			exitWithError(err)
		}
		if len(users) == 0 {
			fmt.Println("No users")
			return
		}
		for _, user := range users {
			state := "enabled"
			if !user.Enabled {
				state = "disabled"
			}
			fmt.Printf("%4s  %-20s %s\n", user.ID, user.Name, state)
		}
	},
}

// usersAddCmd is the command to add a user
var usersAddCmd = &cobra.Command{
	Use:   "add [context-id] [name]",
	Short: "Add a user to a context",
	Long: `Add a user to a context, optionally with username/password credentials.
Examples:
  zapscan users add 1 alice --username alice --password secret`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		contextID := args[0]

		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		userID, err := Container.AuthService.CreateUser(ctx, contextID, args[1])
		if err != nil {
			exitWithError(err)
		}

		if userUsername != "" {
			creds := model.UsernamePasswordCredentials{Username: userUsername, Password: userPassword}
			if err := Container.AuthService.SetCredentials(ctx, contextID, userID, creds); err != nil {
				exitWithError(err)
			}
		}
		if err := Container.AuthService.SetUserEnabled(ctx, contextID, userID, !userDisabled); err != nil {
			exitWithError(err)
		}

		fmt.Printf("User %s created with id %s\n", args[1], userID)
	},
}

// usersRemoveCmd is the command to remove a user
var usersRemoveCmd = &cobra.Command{
	Use:   "remove [context-id] [user-id]",
	Short: "Remove a user from a context",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		connect(ctx)

		if err := Container.AuthService.RemoveUser(ctx, args[0], args[1]); err != nil {
			exitWithError(err)
		}
		fmt.Printf("User %s removed\n", args[1])
	},
}

func init() {
	RootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersRemoveCmd)

	usersAddCmd.Flags().StringVarP(&userUsername, "username", "u", "", "Login username")
	usersAddCmd.Flags().StringVarP(&userPassword, "password", "p", "", "Login password")
	usersAddCmd.Flags().BoolVar(&userDisabled, "disabled", false, "Create the user disabled")
}
