package categorize

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/llm"
	"github.com/chandrameenamohan/expense-tracker/internal/store"
)

type capturingRunner struct {
	lastPrompt string
	stdout     string
}

func (r *capturingRunner) Run(ctx context.Context, args []string) (int, string, string, error) {
	for i, a := range args {
		if a == "-p" && i+1 < len(args) {
			r.lastPrompt = args[i+1]
		}
	}
	return 0, r.stdout, "", nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestCategorize_CorrectionAppearsVerbatimInPrompt is the determinism
// clause test from spec.md §4.6: a correction for merchant M must appear
// verbatim in prompts for subsequent transactions from M.
func TestCategorize_CorrectionAppearsVerbatimInPrompt(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertCategoryCorrection(context.Background(), domain.CategoryCorrection{
		Merchant: "Swiggy", OriginalCategory: "Other", CorrectedCategory: "Food", CreatedAt: time.Now().UTC(),
	}))

	runner := &capturingRunner{stdout: `{"category": "Food", "confidence": 0.9}`}
	gateway := llm.New("fake-bin", runner, zerolog.Nop())
	c := New(gateway, s)

	_, err := c.Categorize(context.Background(), domain.Transaction{Merchant: "Swiggy", Amount: 250, Date: time.Now().UTC()})
	require.NoError(t, err)

	assert.Contains(t, runner.lastPrompt, "was Other -> corrected to Food")
}

func TestCategorize_ValidResponse(t *testing.T) {
	s := newTestStore(t)
	runner := &capturingRunner{stdout: `{"category": "Shopping", "confidence": 0.85}`}
	gateway := llm.New("fake-bin", runner, zerolog.Nop())
	c := New(gateway, s)

	result, err := c.Categorize(context.Background(), domain.Transaction{Merchant: "Amazon", Date: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryShopping, result.Category)
	assert.Equal(t, 0.85, result.Confidence)
}

func TestCategorize_InvalidCategoryFallsBackToOther(t *testing.T) {
	s := newTestStore(t)
	runner := &capturingRunner{stdout: `{"category": "NotARealCategory", "confidence": 0.9}`}
	gateway := llm.New("fake-bin", runner, zerolog.Nop())
	c := New(gateway, s)

	result, err := c.Categorize(context.Background(), domain.Transaction{Merchant: "X", Date: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOther, result.Category)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestCategorize_ModelUnavailableFallsBackToOther(t *testing.T) {
	s := newTestStore(t)
	runner := &capturingRunner{stdout: ""}
	gateway := llm.New("fake-bin", runner, zerolog.Nop())
	c := New(gateway, s)

	result, err := c.Categorize(context.Background(), domain.Transaction{Merchant: "X", Date: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, fallbackResult, result)
}

func TestCategorizeBatch_LengthMismatchFallsThroughToPerTransaction(t *testing.T) {
	s := newTestStore(t)
	runner := &capturingRunner{stdout: `{"results": [{"category": "Food", "confidence": 0.8}]}`}
	gateway := llm.New("fake-bin", runner, zerolog.Nop())
	c := New(gateway, s)

	txs := []domain.Transaction{
		{Merchant: "Swiggy", Date: time.Now().UTC()},
		{Merchant: "Uber", Date: time.Now().UTC()},
	}
	results, err := c.CategorizeBatch(context.Background(), txs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// per-transaction fallback re-invokes the single-call flow, whose
	// canned response here is still the batch-shaped string; it decodes
	// as a singleResponse with an empty category, which is not a valid
	// category -> both fall back to Other.
	assert.Equal(t, domain.CategoryOther, results[0].Category)
}

func TestCategorizeBatch_MatchingLengthUsesArrayResponse(t *testing.T) {
	s := newTestStore(t)
	runner := &capturingRunner{stdout: `{"results": [
		{"category": "Food", "confidence": 0.9},
		{"category": "Transport", "confidence": 0.7}
	]}`}
	gateway := llm.New("fake-bin", runner, zerolog.Nop())
	c := New(gateway, s)

	txs := []domain.Transaction{
		{Merchant: "Swiggy", Date: time.Now().UTC()},
		{Merchant: "Ola", Date: time.Now().UTC()},
	}
	results, err := c.CategorizeBatch(context.Background(), txs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.CategoryFood, results[0].Category)
	assert.Equal(t, domain.CategoryTransport, results[1].Category)
}

func TestCategorizeBatch_EmptyInput(t *testing.T) {
	s := newTestStore(t)
	gateway := llm.New("fake-bin", &capturingRunner{}, zerolog.Nop())
	c := New(gateway, s)

	results, err := c.CategorizeBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
