// Package categorize implements the Categorizer (C6): single-transaction
// and batch category assignment, conditioned on merchant-specific and
// recent category corrections.
package categorize

import (
	"context"
	"fmt"
	"strings"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/llm"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// correctionBacklog is the per-merchant and global cap from spec.md §4.6.
const correctionBacklog = 10

// fallbackResult is returned on any failure along the categorization
// chain (spec.md §4.6 step 4: "On any failure return {Other, 0}").
var fallbackResult = Result{Category: domain.CategoryOther, Confidence: 0}

// Result is one categorization outcome.
type Result struct {
	Category   domain.Category
	Confidence float64
}

type singleResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

type batchResponse struct {
	Results []singleResponse `json:"results"`
}

// Categorizer assigns categories via the LLM gateway, conditioned on the
// store's correction history.
type Categorizer struct {
	gateway *llm.Gateway
	store   ports.Store
}

// New constructs a Categorizer.
func New(gateway *llm.Gateway, store ports.Store) *Categorizer {
	return &Categorizer{gateway: gateway, store: store}
}

// Categorize runs the single-transaction flow from spec.md §4.6.
func (c *Categorizer) Categorize(ctx context.Context, tx domain.Transaction) (Result, error) {
	corrections, err := c.correctionsFor(ctx, tx.Merchant)
	if err != nil {
		return fallbackResult, nil
	}

	prompt := buildSinglePrompt(tx, corrections)
	resp := llm.RunJSON[singleResponse](ctx, c.gateway, prompt)
	if resp == nil {
		return fallbackResult, nil
	}
	return coerceResult(resp.Category, resp.Confidence), nil
}

// CategorizeBatch runs the batch flow. On any array-length mismatch it
// falls through to per-transaction calls (spec.md §4.6 "Batch flow").
func (c *Categorizer) CategorizeBatch(ctx context.Context, txs []domain.Transaction) ([]Result, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	correctionsByMerchant := make(map[string][]domain.CategoryCorrection, len(txs))
	for _, tx := range txs {
		if _, ok := correctionsByMerchant[tx.Merchant]; ok {
			continue
		}
		corrections, err := c.correctionsFor(ctx, tx.Merchant)
		if err != nil {
			corrections = nil
		}
		correctionsByMerchant[tx.Merchant] = corrections
	}

	prompt := buildBatchPrompt(txs, correctionsByMerchant)
	resp := llm.RunJSON[batchResponse](ctx, c.gateway, prompt)
	if resp == nil || len(resp.Results) != len(txs) {
		return c.categorizeEachFallback(ctx, txs)
	}

	results := make([]Result, len(txs))
	for i, r := range resp.Results {
		results[i] = coerceResult(r.Category, r.Confidence)
	}
	return results, nil
}

func (c *Categorizer) categorizeEachFallback(ctx context.Context, txs []domain.Transaction) ([]Result, error) {
	results := make([]Result, len(txs))
	for i, tx := range txs {
		r, err := c.Categorize(ctx, tx)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

// correctionsFor implements spec.md §4.6 step 1: merchant-keyed
// corrections first, backfilled from the most recent global corrections
// (excluding ones already included), capped at correctionBacklog total.
func (c *Categorizer) correctionsFor(ctx context.Context, merchant string) ([]domain.CategoryCorrection, error) {
	merchantCorrections, err := c.store.CorrectionsByMerchant(ctx, merchant, correctionBacklog)
	if err != nil {
		return nil, fmt.Errorf("categorize: corrections by merchant: %w", err)
	}
	if len(merchantCorrections) >= correctionBacklog {
		return merchantCorrections, nil
	}

	seen := make(map[int64]bool, len(merchantCorrections))
	for _, corr := range merchantCorrections {
		seen[corr.ID] = true
	}

	recent, err := c.store.RecentCorrections(ctx, correctionBacklog)
	if err != nil {
		return nil, fmt.Errorf("categorize: recent corrections: %w", err)
	}

	out := merchantCorrections
	for _, corr := range recent {
		if len(out) >= correctionBacklog {
			break
		}
		if seen[corr.ID] {
			continue
		}
		out = append(out, corr)
	}
	return out, nil
}

func coerceResult(category string, confidence float64) Result {
	if !domain.ValidCategory(category) {
		return fallbackResult
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Result{Category: domain.Category(category), Confidence: confidence}
}

func buildSinglePrompt(tx domain.Transaction, corrections []domain.CategoryCorrection) string {
	var b strings.Builder
	b.WriteString("Assign exactly one category to this transaction.\n\n")
	writeCategoryList(&b)
	writeCorrections(&b, corrections)
	b.WriteString("Transaction:\n")
	writeTransactionFields(&b, tx)
	b.WriteString("\nRespond with exactly: {\"category\": string, \"confidence\": number}\n")
	return b.String()
}

func buildBatchPrompt(txs []domain.Transaction, correctionsByMerchant map[string][]domain.CategoryCorrection) string {
	var b strings.Builder
	b.WriteString("Assign exactly one category to each transaction below, in order.\n\n")
	writeCategoryList(&b)

	seen := map[string]bool{}
	for _, tx := range txs {
		if seen[tx.Merchant] {
			continue
		}
		seen[tx.Merchant] = true
		if corrections := correctionsByMerchant[tx.Merchant]; len(corrections) > 0 {
			writeCorrections(&b, corrections)
		}
	}

	b.WriteString("Transactions:\n")
	for i, tx := range txs {
		fmt.Fprintf(&b, "%d. ", i+1)
		writeTransactionFields(&b, tx)
	}
	b.WriteString("\nRespond with exactly: {\"results\": [{\"category\": string, \"confidence\": number}, ...]} ")
	b.WriteString("with one entry per transaction, in the same order.\n")
	return b.String()
}

func writeCategoryList(b *strings.Builder) {
	b.WriteString("Categories:\n")
	for _, c := range domain.CategoryDescriptions {
		fmt.Fprintf(b, "- %s: %s\n", c.Name, c.Description)
	}
	b.WriteString("\n")
}

// writeCorrections formats corrections as "was X -> corrected to Y"
// examples (spec.md §4.6 step 2), authoritative per the determinism
// clause.
func writeCorrections(b *strings.Builder, corrections []domain.CategoryCorrection) {
	if len(corrections) == 0 {
		return
	}
	b.WriteString("Known corrections (treat as authoritative for the same merchant):\n")
	for _, corr := range corrections {
		fmt.Fprintf(b, "- %s: was %s -> corrected to %s\n", corr.Merchant, corr.OriginalCategory, corr.CorrectedCategory)
	}
	b.WriteString("\n")
}

func writeTransactionFields(b *strings.Builder, tx domain.Transaction) {
	fmt.Fprintf(b, "merchant=%q amount=%.2f direction=%s type=%s date=%s\n",
		tx.Merchant, tx.Amount, tx.Direction, tx.Type, tx.Date.Format("2006-01-02"))
}
