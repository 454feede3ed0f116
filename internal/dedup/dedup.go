// Package dedup implements the Dedup Engine (C7): SQL candidate
// selection followed by pairwise AI confirmation.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/llm"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// DefaultDateToleranceDays matches spec.md §4.7's default.
const DefaultDateToleranceDays = 1

type judgment struct {
	IsDuplicate bool    `json:"isDuplicate"`
	Confidence  float64 `json:"confidence"`
}

// Engine orchestrates candidate selection and AI confirmation.
type Engine struct {
	store             ports.Store
	gateway           *llm.Gateway
	dateToleranceDays int
	logger            zerolog.Logger
}

// New constructs an Engine. dateToleranceDays <= 0 uses the default.
func New(store ports.Store, gateway *llm.Gateway, dateToleranceDays int, logger zerolog.Logger) *Engine {
	if dateToleranceDays <= 0 {
		dateToleranceDays = DefaultDateToleranceDays
	}
	return &Engine{store: store, gateway: gateway, dateToleranceDays: dateToleranceDays, logger: logger}
}

// Result summarizes one Run.
type Result struct {
	CandidatesExamined int
	DuplicatesMarked   int
}

// Run examines candidate pairs touching newIDs (or all pairs if newIDs
// is empty), confirms each via the gateway, and records confirmed
// duplicates (spec.md §4.7).
func (e *Engine) Run(ctx context.Context, newIDs []string) (Result, error) {
	pairs, err := e.store.DuplicateCandidates(ctx, e.dateToleranceDays, newIDs)
	if err != nil {
		return Result{}, fmt.Errorf("dedup: candidates: %w", err)
	}

	result := Result{CandidatesExamined: len(pairs)}
	for _, pair := range pairs {
		marked, err := e.confirmAndMark(ctx, pair)
		if err != nil {
			return result, fmt.Errorf("dedup: confirm pair %s/%s: %w", pair.First.ID, pair.Second.ID, err)
		}
		if marked {
			result.DuplicatesMarked++
		}
	}
	return result, nil
}

// confirmAndMark asks the gateway whether pair is a true duplicate and,
// if confirmed and not already recorded, marks the later (by id) as
// duplicate of the earlier (spec.md §3 "kept < duplicate").
func (e *Engine) confirmAndMark(ctx context.Context, pair ports.TransactionPair) (bool, error) {
	kept, dup := pair.First, pair.Second
	if dup.ID < kept.ID {
		kept, dup = dup, kept
	}

	already, err := e.store.HasDuplicateRecord(ctx, dup.ID)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	prompt := buildJudgmentPrompt(kept, dup)
	resp := llm.RunJSON[judgment](ctx, e.gateway, prompt)
	if resp == nil || !resp.IsDuplicate {
		return false, nil
	}

	confidence := resp.Confidence
	group := domain.DuplicateGroup{
		KeptTransactionID:      kept.ID,
		DuplicateTransactionID: dup.ID,
		Reason:                 "ai-confirmed: matching amount/direction within date tolerance",
		Confidence:             &confidence,
		CreatedAt:              time.Now().UTC(),
	}

	inserted, err := e.store.MarkAsDuplicate(ctx, group)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	if err := e.store.UpdateTransactionReview(ctx, dup.ID, true); err != nil {
		return false, err
	}
	return true, nil
}

func buildJudgmentPrompt(kept, dup domain.Transaction) string {
	return fmt.Sprintf(
		"Are these two transactions the same real-world event recorded twice (e.g. bank + UPI app both alerting on one payment)?\n\n"+
			"Transaction A: merchant=%q amount=%.2f direction=%s date=%s bank=%q\n"+
			"Transaction B: merchant=%q amount=%.2f direction=%s date=%s bank=%q\n\n"+
			"Respond with exactly: {\"isDuplicate\": bool, \"confidence\": number}\n",
		kept.Merchant, kept.Amount, kept.Direction, kept.Date.Format("2006-01-02"), kept.Bank,
		dup.Merchant, dup.Amount, dup.Direction, dup.Date.Format("2006-01-02"), dup.Bank,
	)
}
