package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewctl/internal/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long: `Manage authentication against the Crewdeck API.

The auth command provides subcommands for logging in, logging out, and
checking the current session.

The session is stored in $HOME/.crewctl/session.json. Set
CREWDECK_TOKEN_PASSPHRASE to seal the record at rest.

Examples:
  crewctl auth login --email user@example.com --tenant acme
  crewctl auth status
  crewctl auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// authLoginCmd handles user login
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Crewdeck",
	Long: `Log in to Crewdeck with your email and tenant slug.

After logging in, the issued token is saved locally and attached to every
subsequent command.

Examples:
  crewctl auth login --email user@example.com --tenant acme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		tenant, _ := cmd.Flags().GetString("tenant")

		if email == "" {
			return fmt.Errorf("--email is required")
		}
		if tenant == "" {
			return fmt.Errorf("--tenant is required")
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Logging in as: %s (tenant %s)\n", email, tenant)

		resp, err := app.client.Login(cmd.Context(), email, tenant)
		if err != nil {
			return err
		}

		if err := app.session.Login(session.Session{
			Token:      resp.Token,
			UserID:     resp.UserID,
			TenantID:   resp.TenantID,
			UserName:   resp.UserName,
			TenantName: resp.TenantName,
			Role:       resp.Role,
		}); err != nil {
			return err
		}

		fmt.Printf("Logged in as %s (%s).\n", resp.UserName, resp.TenantName)
		return nil
	},
}

// authLogoutCmd handles user logout
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and remove the stored session",
	Long: `Log out, remove the stored session, and drop every cached result.

Examples:
  crewctl auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		if !app.session.IsAuthenticated() {
			fmt.Println("Not logged in.")
			return nil
		}

		if current, ok := app.session.Current(); ok {
			fmt.Printf("Logging out: %s\n", current.UserName)
		}

		app.session.Logout()

		fmt.Println("Logged out successfully.")
		fmt.Println()
		fmt.Println("Use 'crewctl auth login' to log in again.")
		return nil
	},
}

// authStatusCmd shows the current session
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		current, ok := app.session.Current()
		if !ok {
			fmt.Println("Not logged in.")
			fmt.Println()
			fmt.Println("Use 'crewctl auth login' to log in.")
			return nil
		}

		fmt.Printf("Logged in as: %s\n", current.UserName)
		fmt.Printf("Tenant:       %s\n", current.TenantName)
		if current.Role != "" {
			fmt.Printf("Role:         %s\n", current.Role)
		}
		return nil
	},
}

func init() {
	authLoginCmd.Flags().String("email", "", "account email address")
	authLoginCmd.Flags().String("tenant", "", "tenant slug")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
