// Package insights implements the Insights Engine (C9): pure read-side
// derived queries and rule-based suggestions, with no LLM involvement.
package insights

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// DefaultSpikeThreshold and DefaultLargeTransactionAmount match
// spec.md §4.9's defaults.
const (
	DefaultSpikeThreshold         = 1.4
	DefaultLargeTransactionAmount = 10000
)

// Engine computes derived statistics and alerts over stored
// transactions.
type Engine struct {
	store                  ports.Store
	spikeThreshold         float64
	largeTransactionAmount float64
}

// New constructs an Engine. Zero thresholds fall back to the defaults.
func New(store ports.Store, spikeThreshold, largeTransactionAmount float64) *Engine {
	if spikeThreshold <= 0 {
		spikeThreshold = DefaultSpikeThreshold
	}
	if largeTransactionAmount <= 0 {
		largeTransactionAmount = DefaultLargeTransactionAmount
	}
	return &Engine{store: store, spikeThreshold: spikeThreshold, largeTransactionAmount: largeTransactionAmount}
}

// MonthStat is one month's debit total and its change from the prior
// month.
type MonthStat struct {
	Month         string // "2025-01"
	Total         float64
	Previous      float64  // prior month's total; 0 for the first month in the series
	PercentChange *float64 // nil for the first month in the series
}

// MonthOverMonth computes debit-only totals per month and the percent
// change from the previous month (spec.md §4.9).
func (e *Engine) MonthOverMonth(ctx context.Context) ([]MonthStat, error) {
	txs, err := e.store.ListTransactions(ctx, ports.TransactionFilter{Direction: string(domain.Debit)})
	if err != nil {
		return nil, fmt.Errorf("insights: month over month: %w", err)
	}

	totals := groupByMonth(txs)
	months := sortedKeys(totals)

	stats := make([]MonthStat, len(months))
	var prevTotal float64
	for i, m := range months {
		total := totals[m]
		stat := MonthStat{Month: m, Total: total, Previous: prevTotal}
		if i > 0 && prevTotal != 0 {
			pct := (total - prevTotal) / prevTotal * 100
			stat.PercentChange = &pct
		}
		stats[i] = stat
		prevTotal = total
	}
	return stats, nil
}

// CategoryTrendStat compares one category's current and previous month
// totals.
type CategoryTrendStat struct {
	Category      string
	Current       float64
	Previous      float64
	PercentChange float64
}

// CategoryTrend compares current vs previous month per category,
// sorted by absolute percent change descending.
func (e *Engine) CategoryTrend(ctx context.Context) ([]CategoryTrendStat, error) {
	now := time.Now().UTC()
	currentStart, previousStart, previousEnd := monthWindows(now)

	current, err := e.categoryTotals(ctx, currentStart, now)
	if err != nil {
		return nil, err
	}
	previous, err := e.categoryTotals(ctx, previousStart, previousEnd)
	if err != nil {
		return nil, err
	}

	categories := map[string]bool{}
	for c := range current {
		categories[c] = true
	}
	for c := range previous {
		categories[c] = true
	}

	stats := make([]CategoryTrendStat, 0, len(categories))
	for c := range categories {
		cur, prev := current[c], previous[c]
		var pct float64
		switch {
		case prev != 0:
			pct = (cur - prev) / prev * 100
		case cur != 0:
			pct = 100
		}
		stats = append(stats, CategoryTrendStat{Category: c, Current: cur, Previous: prev, PercentChange: pct})
	}

	sort.Slice(stats, func(i, j int) bool {
		return math.Abs(stats[i].PercentChange) > math.Abs(stats[j].PercentChange)
	})
	return stats, nil
}

// MerchantStat summarizes a recurring merchant's spend.
type MerchantStat struct {
	Merchant  string
	Total     float64
	Average   float64
	Count     int
	Frequency string // "weekly", "monthly", or "occasional"
}

// MerchantRecurrence groups by merchant (count >= 2) and labels
// frequency by mean gap between transaction dates (spec.md §4.9).
func (e *Engine) MerchantRecurrence(ctx context.Context) ([]MerchantStat, error) {
	txs, err := e.store.ListTransactions(ctx, ports.TransactionFilter{Direction: string(domain.Debit)})
	if err != nil {
		return nil, fmt.Errorf("insights: merchant recurrence: %w", err)
	}

	byMerchant := map[string][]domain.Transaction{}
	for _, tx := range txs {
		byMerchant[tx.Merchant] = append(byMerchant[tx.Merchant], tx)
	}

	var stats []MerchantStat
	for merchant, group := range byMerchant {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })

		var total float64
		for _, tx := range group {
			total += tx.Amount
		}

		meanGapDays := meanGap(group)
		frequency := "occasional"
		switch {
		case meanGapDays <= 10:
			frequency = "weekly"
		case meanGapDays <= 45:
			frequency = "monthly"
		}

		stats = append(stats, MerchantStat{
			Merchant:  merchant,
			Total:     total,
			Average:   total / float64(len(group)),
			Count:     len(group),
			Frequency: frequency,
		})
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Total > stats[j].Total })
	return stats, nil
}

func (e *Engine) categoryTotals(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	txs, err := e.store.ListTransactions(ctx, ports.TransactionFilter{
		Direction: string(domain.Debit), StartDate: &start, EndDate: &end,
	})
	if err != nil {
		return nil, fmt.Errorf("insights: category totals: %w", err)
	}
	totals := map[string]float64{}
	for _, tx := range txs {
		totals[tx.Category] += tx.Amount
	}
	return totals, nil
}

func groupByMonth(txs []domain.Transaction) map[string]float64 {
	totals := map[string]float64{}
	for _, tx := range txs {
		key := tx.Date.Format("2006-01")
		totals[key] += tx.Amount
	}
	return totals
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// monthWindows returns [currentMonthStart, now), [previousMonthStart, previousMonthEnd).
func monthWindows(now time.Time) (currentStart, previousStart, previousEnd time.Time) {
	currentStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	previousStart = currentStart.AddDate(0, -1, 0)
	previousEnd = currentStart
	return
}

// meanGap returns the mean number of days between consecutive
// transactions in a date-sorted group.
func meanGap(group []domain.Transaction) float64 {
	if len(group) < 2 {
		return math.Inf(1)
	}
	total := group[len(group)-1].Date.Sub(group[0].Date).Hours() / 24
	return total / float64(len(group)-1)
}
