package cli

import (
	"context"
	"fmt"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// categorizeTransactions runs the batch categorization flow over a set
// of already-persisted transaction ids and writes each result back to
// the store.
func categorizeTransactions(ctx context.Context, app *App, txIDs []string) error {
	txs := make([]domain.Transaction, 0, len(txIDs))
	for _, id := range txIDs {
		tx, err := app.Store.GetTransaction(ctx, id)
		if err != nil {
			return fmt.Errorf("load transaction %s: %w", id, err)
		}
		txs = append(txs, *tx)
	}

	results, err := app.Categorizer.CategorizeBatch(ctx, txs)
	if err != nil {
		return fmt.Errorf("categorize batch: %w", err)
	}

	for i, result := range results {
		if err := app.Store.UpdateTransactionCategory(ctx, txs[i].ID, string(result.Category)); err != nil {
			return fmt.Errorf("update category for %s: %w", txs[i].ID, err)
		}
	}
	return nil
}
