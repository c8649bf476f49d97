package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lunchdesk/internal/models"
	"lunchdesk/internal/report"
)

func newExportCmd() *cobra.Command {
	var (
		week string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a week's orders to an xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := models.ParseDate(week)
			if err != nil {
				return fmt.Errorf("invalid --week %q: expected YYYY-MM-DD", week)
			}
			weekStart := models.MondayOf(parsed)
			if out == "" {
				out = report.FileName(weekStart)
			}

			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			orders, err := a.orders.ListForWeek(cmd.Context(), operatorActor, weekStart, nil)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := report.WeeklyOrders(f, weekStart, orders); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d orders to %s\n", len(orders), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Any date in the delivery week (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default orders-<week>.xlsx)")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}
