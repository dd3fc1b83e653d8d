package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crewdeck/crewctl/internal/platform"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Observe and control digital workers",
	Long: `Observe and control the digital workers in your tenant.

Listing and detail reads are served from the local result cache when fresh.
Lifecycle actions (start, stop, pause, resume) only request the transition;
the server decides whether it happens, so read the worker again to see the
resulting state.

Examples:
  crewctl workers list --status running
  crewctl workers get 42
  crewctl workers start 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var workersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		role, _ := cmd.Flags().GetString("role")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		list, err := app.workers.List(cmd.Context(), platform.WorkerFilter{
			Status:   status,
			Role:     role,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(list)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tROLE\tSTATUS\tTASKS DONE") //nolint:errcheck
		fmt.Fprintln(w, "--\t----\t----\t------\t----------") //nolint:errcheck
		for _, worker := range list.Workers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", //nolint:errcheck
				worker.ID, worker.Name, worker.Role, worker.Status, worker.TasksDone)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d workers total\n", list.TotalCount)
		return nil
	},
}

var workersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		worker, err := app.workers.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if worker == nil {
			fmt.Println("No worker id supplied.")
			return nil
		}

		if jsonOutput(cmd) {
			return printJSON(worker)
		}

		fmt.Printf("ID:          %s\n", worker.ID)
		fmt.Printf("Name:        %s\n", worker.Name)
		fmt.Printf("Role:        %s\n", worker.Role)
		fmt.Printf("Status:      %s\n", worker.Status)
		fmt.Printf("Tasks done:  %d\n", worker.TasksDone)
		if worker.Description != "" {
			fmt.Printf("Description: %s\n", worker.Description)
		}
		return nil
	},
}

var workersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a worker",
	Long: `Create a digital worker.

Examples:
  crewctl workers create --name "Support Agent" --role support`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		description, _ := cmd.Flags().GetString("description")

		if name == "" {
			return fmt.Errorf("--name is required")
		}
		if role == "" {
			return fmt.Errorf("--role is required")
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		worker, err := app.workers.Create(cmd.Context(), platform.CreateWorkerRequest{
			Name:        name,
			Role:        role,
			Description: description,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Created worker %s (%s).\n", worker.ID, worker.Name)
		return nil
	},
}

var workersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		var req platform.UpdateWorkerRequest
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			req.Name = &name
		}
		if cmd.Flags().Changed("role") {
			role, _ := cmd.Flags().GetString("role")
			req.Role = &role
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			req.Description = &description
		}

		worker, err := app.workers.Update(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}

		fmt.Printf("Updated worker %s.\n", worker.ID)
		return nil
	},
}

var workersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		if err := app.workers.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted worker %s.\n", args[0])
		return nil
	},
}

// lifecycleCommand builds one of the start/stop/pause/resume commands. All
// four only request the transition; none touches the cache.
func lifecycleCommand(use, short string, action func(a *app, cmd *cobra.Command, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}

			if err := action(app, cmd, args[0]); err != nil {
				return err
			}

			fmt.Printf("Requested %s for worker %s. Run 'crewctl workers get %s' to see the resulting state.\n",
				use, args[0], args[0])
			return nil
		},
	}
}

// jsonOutput reports whether the persistent --json flag was set.
func jsonOutput(cmd *cobra.Command) bool {
	enabled, _ := cmd.Flags().GetBool("json")
	return enabled
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	workersListCmd.Flags().String("status", "", "filter by status")
	workersListCmd.Flags().String("role", "", "filter by role")
	workersListCmd.Flags().Int("page", 0, "page number")
	workersListCmd.Flags().Int("page-size", 0, "page size")

	workersCreateCmd.Flags().String("name", "", "worker name")
	workersCreateCmd.Flags().String("role", "", "worker role")
	workersCreateCmd.Flags().String("description", "", "worker description")

	workersUpdateCmd.Flags().String("name", "", "new worker name")
	workersUpdateCmd.Flags().String("role", "", "new worker role")
	workersUpdateCmd.Flags().String("description", "", "new worker description")

	workersCmd.AddCommand(workersListCmd)
	workersCmd.AddCommand(workersGetCmd)
	workersCmd.AddCommand(workersCreateCmd)
	workersCmd.AddCommand(workersUpdateCmd)
	workersCmd.AddCommand(workersDeleteCmd)
	workersCmd.AddCommand(lifecycleCommand("start", "Start a worker", func(a *app, cmd *cobra.Command, id string) error {
		return a.workers.Start(cmd.Context(), id)
	}))
	workersCmd.AddCommand(lifecycleCommand("stop", "Stop a worker", func(a *app, cmd *cobra.Command, id string) error {
		return a.workers.Stop(cmd.Context(), id)
	}))
	workersCmd.AddCommand(lifecycleCommand("pause", "Pause a worker", func(a *app, cmd *cobra.Command, id string) error {
		return a.workers.Pause(cmd.Context(), id)
	}))
	workersCmd.AddCommand(lifecycleCommand("resume", "Resume a worker", func(a *app, cmd *cobra.Command, id string) error {
		return a.workers.Resume(cmd.Context(), id)
	}))
	rootCmd.AddCommand(workersCmd)
}
