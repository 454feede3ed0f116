package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

func newSummaryCommand(app *App) *cobra.Command {
	var from, to, direction string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals transactions in a date range, optionally by direction",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ports.TransactionFilter{Direction: direction}
			if from != "" {
				t, err := time.Parse("2006-01-02", from)
				if err != nil {
					return fmt.Errorf("summary: invalid --from: %w", err)
				}
				filter.StartDate = &t
			}
			if to != "" {
				t, err := time.Parse("2006-01-02", to)
				if err != nil {
					return fmt.Errorf("summary: invalid --to: %w", err)
				}
				filter.EndDate = &t
			}

			txs, err := app.Store.ListTransactions(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}

			totals := map[string]float64{}
			var grandTotal float64
			for _, tx := range txs {
				totals[tx.Category] += tx.Amount
				grandTotal += tx.Amount
			}

			for category, total := range totals {
				fmt.Printf("%-20s %12.2f\n", category, total)
			}
			fmt.Printf("%-20s %12.2f\n", "TOTAL", grandTotal)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "only transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "only transactions on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&direction, "direction", "", "filter by direction (debit|credit)")
	return cmd
}
