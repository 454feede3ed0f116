package insights

import (
	"context"
	"fmt"
)

// Suggestion is one flat, composable piece of advice (spec.md §4.9).
type Suggestion struct {
	Message string
}

// Suggestions evaluates the four independent suggestion rules against
// the current derived statistics. Each rule is self-contained; none
// depends on another firing.
func (e *Engine) Suggestions(ctx context.Context) ([]Suggestion, error) {
	var suggestions []Suggestion

	trend, err := e.CategoryTrend(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range trend {
		if t.PercentChange > 50 && t.Current > 500 {
			suggestions = append(suggestions, Suggestion{
				Message: fmt.Sprintf("%s spending is up %.0f%% this month (%.2f) — worth a look", t.Category, t.PercentChange, t.Current),
			})
		}
	}

	merchants, err := e.MerchantRecurrence(ctx)
	if err != nil {
		return nil, err
	}
	var merchantTotal float64
	var topMerchant MerchantStat
	for _, m := range merchants {
		merchantTotal += m.Total
		if m.Total > topMerchant.Total {
			topMerchant = m
		}
		if m.Frequency == "weekly" && m.Total > 2000 {
			suggestions = append(suggestions, Suggestion{
				Message: fmt.Sprintf("%s is a recurring weekly expense totalling %.2f", m.Merchant, m.Total),
			})
		}
	}
	if merchantTotal > 0 && topMerchant.Total/merchantTotal > 0.30 {
		suggestions = append(suggestions, Suggestion{
			Message: fmt.Sprintf("%s accounts for %.0f%% of your tracked merchant spend", topMerchant.Merchant, topMerchant.Total/merchantTotal*100),
		})
	}

	months, err := e.MonthOverMonth(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range months {
		if m.PercentChange == nil {
			continue
		}
		if *m.PercentChange < -30 && m.Previous > 1000 {
			suggestions = append(suggestions, Suggestion{
				Message: fmt.Sprintf("Spending dropped %.0f%% in %s — nice work if intentional", -*m.PercentChange, m.Month),
			})
		}
	}

	return suggestions, nil
}
