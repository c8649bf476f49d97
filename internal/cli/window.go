package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lunchdesk/internal/models"
)

func newWindowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Inspect or change the next-week order window",
	}
	cmd.AddCommand(newWindowShowCmd())
	cmd.AddCommand(newWindowSetCmd())
	return cmd
}

func newWindowShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current order window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			state, err := a.window.State(cmd.Context())
			if err != nil {
				return err
			}
			return printWindow(cmd.OutOrStdout(), state, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newWindowSetCmd() *cobra.Command {
	var (
		enabled    bool
		week       string
		note       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Open or close ordering for an upcoming week",
		Example: "  lunchdesk window set --enabled --week 2024-07-08 --note \"menu published\"\n" +
			"  lunchdesk window set --enabled=false",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, err := parseWeekFlag(week, enabled)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			state, err := a.window.SetWindow(cmd.Context(), enabled, weekStart, strings.TrimSpace(note))
			if err != nil {
				return err
			}
			return printWindow(cmd.OutOrStdout(), state, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&enabled, "enabled", false, "Accept orders for the upcoming week")
	cmd.Flags().StringVar(&week, "week", "", "Monday of the upcoming week (YYYY-MM-DD)")
	cmd.Flags().StringVar(&note, "note", "", "Note shown to admins")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// parseWeekFlag requires a week whenever the window is being opened.
func parseWeekFlag(raw string, enabled bool) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		if enabled {
			return nil, fmt.Errorf("--week is required with --enabled")
		}
		return nil, nil
	}
	week, err := models.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --week %q: expected YYYY-MM-DD", raw)
	}
	return &week, nil
}

func printWindow(w io.Writer, state models.WindowState, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	status := "closed"
	if state.NextWeekEnabled {
		status = "open"
	}
	fmt.Fprintf(w, "next week: %s\n", status)
	if state.WeekStart != nil {
		fmt.Fprintf(w, "week start: %s\n", models.DateKey(*state.WeekStart))
	}
	if state.Note != "" {
		fmt.Fprintf(w, "note: %s\n", state.Note)
	}
	if !state.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "updated: %s\n", state.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}
