package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReparseCommand(app *App) *cobra.Command {
	var missingOnly bool
	var skipCategorize bool

	cmd := &cobra.Command{
		Use:   "reparse",
		Short: "Re-runs the parsing pipeline over already-stored raw emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			emails, err := app.Store.ListRawEmails(ctx, missingOnly)
			if err != nil {
				return fmt.Errorf("reparse: %w", err)
			}

			var newTxIDs []string
			for _, email := range emails {
				txs := app.Registry.Parse(ctx, email)
				if len(txs) == 0 {
					continue
				}
				inserted, err := app.Store.InsertTransactions(ctx, txs)
				if err != nil {
					return fmt.Errorf("reparse: insert for %s: %w", email.MessageID, err)
				}
				newTxIDs = append(newTxIDs, inserted...)
			}
			fmt.Printf("Reparsed %d email(s), extracted %d new transaction(s).\n", len(emails), len(newTxIDs))

			if !skipCategorize && len(newTxIDs) > 0 {
				if err := categorizeTransactions(ctx, app, newTxIDs); err != nil {
					return fmt.Errorf("reparse: categorize: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&missingOnly, "missing", false, "only reparse emails with no extracted transactions")
	cmd.Flags().BoolVar(&skipCategorize, "skip-categorize", false, "skip categorization of newly extracted transactions")
	return cmd
}
