// Package review implements the Review Queue (C10): listing,
// counting, and resolving transactions flagged for human attention.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// Queue exposes {list, count, resolve(tx_id)} over the review-flagged
// transactions (spec.md §4.10).
type Queue struct {
	store ports.Store
}

// New constructs a Queue.
func New(store ports.Store) *Queue {
	return &Queue{store: store}
}

// List returns every transaction currently flagged for review,
// regardless of source.
func (q *Queue) List(ctx context.Context) ([]domain.Transaction, error) {
	txs, err := q.store.ReviewQueue(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("review: list: %w", err)
	}
	return txs, nil
}

// Count returns how many transactions are currently flagged for review.
func (q *Queue) Count(ctx context.Context) (int, error) {
	count, err := q.store.ReviewQueueCount(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("review: count: %w", err)
	}
	return count, nil
}

// Resolve clears a transaction's review flag. When category is
// non-empty and differs from the transaction's current category, it
// also records a correction so C6 learns from the adjudication
// (spec.md §4.10), then updates the transaction's category.
func (q *Queue) Resolve(ctx context.Context, transactionID, category string) error {
	tx, err := q.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("review: resolve: %w", err)
	}

	if category != "" && category != tx.Category {
		if err := q.store.InsertCategoryCorrection(ctx, domain.CategoryCorrection{
			Merchant:          tx.Merchant,
			Description:       tx.Description,
			OriginalCategory:  tx.Category,
			CorrectedCategory: category,
			CreatedAt:         time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("review: resolve: %w", err)
		}
		if err := q.store.UpdateTransactionCategory(ctx, transactionID, category); err != nil {
			return fmt.Errorf("review: resolve: %w", err)
		}
	}

	if err := q.store.UpdateTransactionReview(ctx, transactionID, false); err != nil {
		return fmt.Errorf("review: resolve: %w", err)
	}
	return nil
}
