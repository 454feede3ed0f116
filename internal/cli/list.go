package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

func newListCommand(app *App) *cobra.Command {
	var from, to, txType, category, direction, bank string
	var limit, offset int
	var reviewOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists stored transactions, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ports.TransactionFilter{
				Type: txType, Category: category, Direction: direction, Bank: bank,
				Limit: limit, Offset: offset,
			}
			if from != "" {
				t, err := time.Parse("2006-01-02", from)
				if err != nil {
					return fmt.Errorf("list: invalid --from: %w", err)
				}
				filter.StartDate = &t
			}
			if to != "" {
				t, err := time.Parse("2006-01-02", to)
				if err != nil {
					return fmt.Errorf("list: invalid --to: %w", err)
				}
				filter.EndDate = &t
			}
			if reviewOnly {
				needsReview := true
				filter.NeedsReview = &needsReview
			}

			txs, err := app.Store.ListTransactions(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}

			for _, tx := range txs {
				fmt.Printf("%s  %-10s %-8s %10.2f  %-20s %-12s %s\n",
					tx.Date.Format("2006-01-02"), tx.ID[:8], tx.Direction, tx.Amount, tx.Merchant, tx.Category, tx.Bank)
			}
			fmt.Printf("%d transaction(s)\n", len(txs))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "only transactions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "only transactions on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&txType, "type", "", "filter by transaction type")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&direction, "direction", "", "filter by direction (debit|credit)")
	cmd.Flags().StringVar(&bank, "bank", "", "filter by bank")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&reviewOnly, "review", false, "only transactions flagged for review")
	return cmd
}
