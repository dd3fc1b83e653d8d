package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/crewdeck/crewctl/internal/platform"
	"github.com/crewdeck/crewctl/internal/tui"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Follow worker activity",
	Long: `Follow the activity stream of your digital workers.

Examples:
  crewctl activity list --worker 42 --min-importance 3
  crewctl activity summary --worker 42 --hours 24
  crewctl activity feed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent activity events",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		filter, err := activityFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		list, err := app.activity.List(cmd.Context(), filter)
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(list)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TIME\tWORKER\tEVENT\tIMPORTANCE\tSUMMARY")  //nolint:errcheck
		fmt.Fprintln(w, "----\t------\t-----\t----------\t-------") //nolint:errcheck
		for _, event := range list.Activities {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", //nolint:errcheck
				event.OccurredAt.Local().Format("15:04:05"),
				event.EmployeeID, event.EventType, event.Importance, event.Summary)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d events total\n", list.TotalCount)
		return nil
	},
}

var activitySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show aggregated event counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		worker, _ := cmd.Flags().GetString("worker")
		hours, _ := cmd.Flags().GetInt("hours")

		summary, err := app.activity.Summary(cmd.Context(), worker, hours)
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(summary)
		}

		scope := "all workers"
		if worker != "" {
			scope = "worker " + worker
		}
		fmt.Printf("Activity for %s over the last %d hours:\n\n", scope, hours)

		types := make([]string, 0, len(summary.EventCounts))
		for eventType := range summary.EventCounts {
			types = append(types, eventType)
		}
		sort.Strings(types)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		for _, eventType := range types {
			fmt.Fprintf(w, "%s\t%d\n", eventType, summary.EventCounts[eventType]) //nolint:errcheck
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d events total\n", summary.Total)
		return nil
	},
}

var activityFeedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Follow activity live",
	Long: `Follow the activity stream in a live terminal view.

The feed refreshes on a fixed interval (poll_interval in the config file,
30s by default) for as long as it is open. Press q to quit.

Examples:
  crewctl activity feed
  crewctl activity feed --worker 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		filter, err := activityFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		model := tui.NewFeed(app.activity, app.cache, app.cfg.PollInterval, filter)
		program := tea.NewProgram(model, tea.WithContext(cmd.Context()))
		_, err = program.Run()
		return err
	},
}

// activityFilterFromFlags builds the shared listing filter. The same flags
// drive both the one-shot listing and the live feed.
func activityFilterFromFlags(cmd *cobra.Command) (platform.ActivityFilter, error) {
	worker, _ := cmd.Flags().GetString("worker")
	eventType, _ := cmd.Flags().GetString("event-type")
	minImportance, _ := cmd.Flags().GetInt("min-importance")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	since, _ := cmd.Flags().GetString("since")

	filter := platform.ActivityFilter{
		EmployeeID:    worker,
		EventType:     eventType,
		MinImportance: minImportance,
		Page:          page,
		PageSize:      pageSize,
	}
	if since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return platform.ActivityFilter{}, fmt.Errorf("--since must be RFC 3339, e.g. 2026-08-30T12:00:00Z: %w", err)
		}
		filter.Since = parsed
	}
	return filter, nil
}

func addActivityFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("worker", "", "only events from this worker")
	cmd.Flags().String("event-type", "", "only events of this type")
	cmd.Flags().Int("min-importance", 0, "only events at or above this importance")
	cmd.Flags().Int("page", 0, "page number")
	cmd.Flags().Int("page-size", 0, "page size")
	cmd.Flags().String("since", "", "only events after this RFC 3339 timestamp")
}

func init() {
	addActivityFilterFlags(activityListCmd)
	addActivityFilterFlags(activityFeedCmd)

	activitySummaryCmd.Flags().String("worker", "", "summarize one worker (default: whole tenant)")
	activitySummaryCmd.Flags().Int("hours", 24, "window size in hours")

	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activitySummaryCmd)
	activityCmd.AddCommand(activityFeedCmd)
	rootCmd.AddCommand(activityCmd)
}
