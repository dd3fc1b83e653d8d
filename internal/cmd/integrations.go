package cmd

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewctl/internal/connect"
	"github.com/crewdeck/crewctl/internal/tui"
)

var integrationsCmd = &cobra.Command{
	Use:   "integrations",
	Short: "Manage third-party integrations",
	Long: `Manage the third-party integrations your workers use.

Connecting an integration walks through provider choice and worker choice,
then opens your browser for the provider's OAuth authorization. The
callback command interprets the address the provider sent the browser
back to.

Examples:
  crewctl integrations providers
  crewctl integrations connect
  crewctl integrations revoke --integration abc --worker 123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var integrationsProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List available providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		providers, err := app.integrations.Providers(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(providers)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tNAME\tAVAILABLE\tCONNECTED WORKERS") //nolint:errcheck
		fmt.Fprintln(w, "--------\t----\t---------\t-----------------") //nolint:errcheck
		for _, p := range providers {
			available := "no"
			if p.Available {
				available = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", //nolint:errcheck
				p.Provider, p.DisplayName, available, p.ConnectedEmployees)
		}
		return w.Flush()
	},
}

var integrationsCredentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "List stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		credentials, err := app.integrations.Credentials(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(credentials)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tPROVIDER\tWORKER\tSTATUS\tCONNECTED") //nolint:errcheck
		fmt.Fprintln(w, "--\t--------\t------\t------\t---------") //nolint:errcheck
		for _, c := range credentials {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", //nolint:errcheck
				c.IntegrationID, c.Provider, c.EmployeeID, c.Status,
				c.ConnectedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var integrationsConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a worker to a provider",
	Long: `Connect a worker to a third-party provider.

Walks through provider and worker choice, then opens your browser for the
provider's authorization page. After authorizing, the provider redirects
back to the dashboard; run 'crewctl integrations credentials' to confirm
the new credential.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsInteractive() {
			return fmt.Errorf("'integrations connect' needs an interactive terminal")
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		providers, err := app.integrations.Providers(cmd.Context())
		if err != nil {
			return err
		}

		grant, err := tui.RunConnectDialog(cmd.Context(), app.flow, providers)
		if err != nil {
			return err
		}
		if grant == nil {
			fmt.Println("Connection cancelled.")
			return nil
		}

		fmt.Printf("Browser opened for %s authorization.\n", grant.Provider)
		fmt.Println("Finish authorizing in the browser; the provider will redirect you back.")
		return nil
	},
}

var integrationsCallbackCmd = &cobra.Command{
	Use:   "callback <return-url>",
	Short: "Interpret a provider callback address",
	Long: `Interpret the address a provider sent the browser back to after an
authorization attempt.

Examples:
  crewctl integrations callback 'https://app.crewdeck.io/integrations?success=true&provider=slack'
  crewctl integrations callback 'https://app.crewdeck.io/integrations?error=oauth_denied'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		parsed, err := url.Parse(args[0])
		if err != nil {
			return fmt.Errorf("unparsable return address: %w", err)
		}

		result := connect.HandleReturn(parsed.Query(), app.cfg.RedirectAfter)

		fmt.Println(result.Message)
		if result.Success {
			// A fresh credential exists; drop the cached catalog and list so
			// the next read shows it.
			app.integrations.RefreshAfterConnect()
		}
		fmt.Printf("Continue at: %s\n", result.RedirectTo)
		return nil
	},
}

var integrationsRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke a stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		integration, _ := cmd.Flags().GetString("integration")
		worker, _ := cmd.Flags().GetString("worker")

		if integration == "" {
			return fmt.Errorf("--integration is required")
		}
		if worker == "" {
			return fmt.Errorf("--worker is required")
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		if err := app.integrations.Revoke(cmd.Context(), integration, worker); err != nil {
			return err
		}

		fmt.Printf("Revoked credential %s for worker %s.\n", integration, worker)
		return nil
	},
}

func init() {
	integrationsRevokeCmd.Flags().String("integration", "", "credential id to revoke")
	integrationsRevokeCmd.Flags().String("worker", "", "worker the credential belongs to")

	integrationsCmd.AddCommand(integrationsProvidersCmd)
	integrationsCmd.AddCommand(integrationsCredentialsCmd)
	integrationsCmd.AddCommand(integrationsConnectCmd)
	integrationsCmd.AddCommand(integrationsCallbackCmd)
	integrationsCmd.AddCommand(integrationsRevokeCmd)
	rootCmd.AddCommand(integrationsCmd)
}
