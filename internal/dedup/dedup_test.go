package dedup

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

type fakeRunner struct{ stdout string }

func (r *fakeRunner) Run(ctx context.Context, args []string) (int, string, string, error) {
	return 0, r.stdout, "", nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedPair(t *testing.T, s *store.Store) (earlier, later domain.Transaction) {
	t.Helper()
	ctx := context.Background()
	_, err := s.InsertRawEmails(ctx, []domain.RawEmail{
		{MessageID: "email-a", From: "bank", Subject: "alert", Date: time.Now().UTC(), BodyText: "x", FetchedAt: time.Now().UTC()},
		{MessageID: "email-b", From: "upi-app", Subject: "alert", Date: time.Now().UTC(), BodyText: "x", FetchedAt: time.Now().UTC()},
	})
	require.NoError(t, err)
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	earlier = domain.Transaction{
		ID: "tx-aaa", EmailMessageID: "email-a", Date: date, Amount: 750, Currency: "INR",
		Direction: domain.Debit, Type: domain.TypeUPI, Merchant: "Big Bazaar", Bank: "HDFC",
		Source: domain.SourceRegex, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	later = earlier
	later.ID = "tx-bbb"
	later.EmailMessageID = "email-b"

	_, err = s.InsertTransaction(ctx, earlier)
	require.NoError(t, err)
	_, err = s.InsertTransaction(ctx, later)
	require.NoError(t, err)
	return earlier, later
}

func TestEngine_ConfirmedDuplicateIsMarked(t *testing.T) {
	s := newTestStore(t)
	earlier, later := seedPair(t, s)

	gateway := llm.New("fake-bin", &fakeRunner{stdout: `{"isDuplicate": true, "confidence": 0.95}`}, zerolog.Nop())
	engine := New(s, gateway, 1, zerolog.Nop())

	result, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CandidatesExamined)
	assert.Equal(t, 1, result.DuplicatesMarked)

	hasDup, err := s.HasDuplicateRecord(context.Background(), later.ID)
	require.NoError(t, err)
	assert.True(t, hasDup)

	tx, err := s.GetTransaction(context.Background(), later.ID)
	require.NoError(t, err)
	assert.True(t, tx.NeedsReview)

	_ = earlier
}

func TestEngine_UnconfirmedPairNotMarked(t *testing.T) {
	s := newTestStore(t)
	_, later := seedPair(t, s)

	gateway := llm.New("fake-bin", &fakeRunner{stdout: `{"isDuplicate": false, "confidence": 0.1}`}, zerolog.Nop())
	engine := New(s, gateway, 1, zerolog.Nop())

	result, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.DuplicatesMarked)

	hasDup, err := s.HasDuplicateRecord(context.Background(), later.ID)
	require.NoError(t, err)
	assert.False(t, hasDup)
}

// TestEngine_Idempotent verifies re-running dedup over an already
// processed set produces no additional group records (spec.md §4.7).
func TestEngine_Idempotent(t *testing.T) {
	s := newTestStore(t)
	seedPair(t, s)

	gateway := llm.New("fake-bin", &fakeRunner{stdout: `{"isDuplicate": true, "confidence": 0.9}`}, zerolog.Nop())
	engine := New(s, gateway, 1, zerolog.Nop())

	first, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.DuplicatesMarked)

	second, err := engine.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.DuplicatesMarked, "re-running over an already-processed pair must mark nothing new")
}
