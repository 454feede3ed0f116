package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// AlertType enumerates the post-sync alert kinds (spec.md §4.9).
type AlertType string

const (
	AlertSpendingSpike    AlertType = "spending_spike"
	AlertNewCategory      AlertType = "new_category"
	AlertLargeTransaction AlertType = "large_transaction"
)

// Alert is one post-sync notice.
type Alert struct {
	Type     AlertType
	Category string
	Message  string
}

// PostSyncAlerts compares the current ISO week (Monday-starting) to the
// mean of the trailing four weeks per category, and flags debits at or
// above the large-transaction threshold since the current week start.
// now is injected so callers (and tests) control the reference instant.
func (e *Engine) PostSyncAlerts(ctx context.Context, now time.Time) ([]Alert, error) {
	weekStart := isoWeekStart(now)
	trailingStart := weekStart.AddDate(0, 0, -28)

	current, err := e.categoryTotals(ctx, weekStart, now)
	if err != nil {
		return nil, err
	}
	trailing, err := e.store.ListTransactions(ctx, ports.TransactionFilter{
		Direction: string(domain.Debit), StartDate: &trailingStart, EndDate: &weekStart,
	})
	if err != nil {
		return nil, fmt.Errorf("insights: post-sync alerts: %w", err)
	}

	trailingTotals := map[string]float64{}
	for _, tx := range trailing {
		trailingTotals[tx.Category] += tx.Amount
	}

	var alerts []Alert
	categories := map[string]bool{}
	for c := range current {
		categories[c] = true
	}
	for c := range trailingTotals {
		categories[c] = true
	}

	for category := range categories {
		currentTotal := current[category]
		avgWeekly := trailingTotals[category] / 4

		switch {
		case avgWeekly == 0 && currentTotal > 0:
			alerts = append(alerts, Alert{
				Type:     AlertNewCategory,
				Category: category,
				Message:  fmt.Sprintf("New category this week: %s (%.2f)", category, currentTotal),
			})
		case avgWeekly > 0 && currentTotal > avgWeekly*e.spikeThreshold:
			pctChange := (currentTotal - avgWeekly) / avgWeekly * 100
			alerts = append(alerts, Alert{
				Type:     AlertSpendingSpike,
				Category: category,
				Message:  fmt.Sprintf("%s spending is up %.0f%% vs. the trailing 4-week average", category, pctChange),
			})
		}
	}

	weekTxs, err := e.store.ListTransactions(ctx, ports.TransactionFilter{
		Direction: string(domain.Debit), StartDate: &weekStart, EndDate: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("insights: post-sync alerts: %w", err)
	}
	for _, tx := range weekTxs {
		if tx.Amount >= e.largeTransactionAmount {
			alerts = append(alerts, Alert{
				Type:     AlertLargeTransaction,
				Category: tx.Category,
				Message:  fmt.Sprintf("Large transaction: %.2f at %s", tx.Amount, tx.Merchant),
			})
		}
	}

	return alerts, nil
}

// isoWeekStart returns the Monday 00:00 UTC that begins t's ISO week.
func isoWeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := t.Weekday()
	offset := int(day) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -offset)
}
