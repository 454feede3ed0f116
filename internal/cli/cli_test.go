package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chandrameenamohan/expense-tracker/internal/categorize"
	"github.com/chandrameenamohan/expense-tracker/internal/dedup"
	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/insights"
	"github.com/chandrameenamohan/expense-tracker/internal/llm"
	"github.com/chandrameenamohan/expense-tracker/internal/parse"
	"github.com/chandrameenamohan/expense-tracker/internal/query"
	"github.com/chandrameenamohan/expense-tracker/internal/review"
	"github.com/chandrameenamohan/expense-tracker/internal/store"
)

// sequenceRunner returns one canned stdout per call, in order, then
// repeats the last one — enough to drive both calls query.Engine.Ask
// makes (generate SQL, then interpret results) with distinct replies.
type sequenceRunner struct {
	outputs []string
	calls   int
}

func (r *sequenceRunner) Run(ctx context.Context, args []string) (int, string, string, error) {
	i := r.calls
	if i >= len(r.outputs) {
		i = len(r.outputs) - 1
	}
	r.calls++
	return 0, r.outputs[i], "", nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newTestApp builds an App wired against a real temp-file SQLite store
// and a gateway whose subprocess replies are scripted by outputs.
func newTestApp(t *testing.T, outputs ...string) (*App, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	runner := &sequenceRunner{outputs: outputs}
	gw := llm.New("claude", runner, zerolog.Nop())

	return &App{
		Store:       s,
		Gateway:     gw,
		Registry:    parse.NewRegistry(nil, zerolog.Nop()),
		Categorizer: categorize.New(gw, s),
		Dedup:       dedup.New(s, gw, 1, zerolog.Nop()),
		Query:       query.New(s, gw),
		Insights:    insights.New(s, insights.DefaultSpikeThreshold, insights.DefaultLargeTransactionAmount),
		Review:      review.New(s),
	}, s
}

func seedTransaction(t *testing.T, s *store.Store, id, merchant, category string, needsReview bool) domain.Transaction {
	t.Helper()
	ctx := context.Background()
	_, err := s.InsertRawEmail(ctx, domain.RawEmail{
		MessageID: id + "-email", From: "bank", Subject: "alert",
		Date: time.Now().UTC(), BodyText: "x", FetchedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	tx := domain.Transaction{
		ID: id, EmailMessageID: id + "-email", Date: time.Now().UTC(), Amount: 250,
		Currency: "INR", Direction: domain.Debit, Type: domain.TypeUPI,
		Merchant: merchant, Bank: "HDFC", Category: category, Source: domain.SourceAI,
		NeedsReview: needsReview, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	_, err = s.InsertTransaction(ctx, tx)
	require.NoError(t, err)
	return tx
}

// seedOnlyEmail builds a raw email with no backing transaction, for
// exercising reparse --missing.
func seedOnlyEmail(id string) domain.RawEmail {
	return domain.RawEmail{
		MessageID: id, From: "bank", Subject: "alert",
		Date: time.Now().UTC(), BodyText: "x", FetchedAt: time.Now().UTC(),
	}
}
