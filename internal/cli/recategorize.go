package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

func newRecategorizeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recategorize <id> <category>",
		Short: "Overrides a transaction's category and records the correction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, category := args[0], args[1]

			tx, err := app.Store.GetTransaction(ctx, id)
			if err != nil {
				return fmt.Errorf("recategorize: %w", err)
			}

			if err := app.Store.InsertCategoryCorrection(ctx, domain.CategoryCorrection{
				Merchant: tx.Merchant, Description: tx.Description,
				OriginalCategory: tx.Category, CorrectedCategory: category,
				CreatedAt: time.Now().UTC(),
			}); err != nil {
				return fmt.Errorf("recategorize: %w", err)
			}

			if err := app.Store.UpdateTransactionCategory(ctx, id, category); err != nil {
				return fmt.Errorf("recategorize: %w", err)
			}

			fmt.Printf("%s: %s -> %s\n", id, tx.Category, category)
			return nil
		},
	}
}
