package insights

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTransaction(t *testing.T, s *store.Store, emailID string, date time.Time, amount float64, merchant, category string, direction domain.Direction) {
	t.Helper()
	ctx := context.Background()
	_, err := s.InsertRawEmail(ctx, domain.RawEmail{
		MessageID: emailID, From: "bank", Subject: "alert", Date: date, BodyText: "x", FetchedAt: date,
	})
	require.NoError(t, err)

	_, err = s.InsertTransaction(ctx, domain.Transaction{
		ID: uuid.NewString(), EmailMessageID: emailID, Date: date, Amount: amount, Currency: "INR",
		Direction: direction, Type: domain.TypeUPI, Merchant: merchant, Category: category,
		Source: domain.SourceRegex, CreatedAt: date, UpdatedAt: date,
	})
	require.NoError(t, err)
}

func TestMonthOverMonth(t *testing.T) {
	s := newTestStore(t)
	seedTransaction(t, s, "e1", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), 1000, "A", "Food", domain.Debit)
	seedTransaction(t, s, "e2", time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), 1500, "A", "Food", domain.Debit)

	e := New(s, 0, 0)
	stats, err := e.MonthOverMonth(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Nil(t, stats[0].PercentChange)
	require.NotNil(t, stats[1].PercentChange)
	assert.InDelta(t, 50.0, *stats[1].PercentChange, 0.01)
}

func TestMerchantRecurrence_FrequencyLabels(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		seedTransaction(t, s, uuid.NewString(), base.AddDate(0, 0, i*7), 100, "Weekly Cafe", "Food", domain.Debit)
	}
	for i := 0; i < 3; i++ {
		seedTransaction(t, s, uuid.NewString(), base.AddDate(0, i, 0), 1000, "Gym", "Fitness", domain.Debit)
	}
	seedTransaction(t, s, uuid.NewString(), base, 50, "Once", "Other", domain.Debit)

	e := New(s, 0, 0)
	stats, err := e.MerchantRecurrence(context.Background())
	require.NoError(t, err)

	byMerchant := map[string]MerchantStat{}
	for _, st := range stats {
		byMerchant[st.Merchant] = st
	}

	require.Contains(t, byMerchant, "Weekly Cafe")
	assert.Equal(t, "weekly", byMerchant["Weekly Cafe"].Frequency)
	require.Contains(t, byMerchant, "Gym")
	assert.Equal(t, "monthly", byMerchant["Gym"].Frequency)
	assert.NotContains(t, byMerchant, "Once")
}

// TestPostSyncAlerts_SpendingSpike is scenario S6 from spec.md §8: Food
// has 1000/week across the 4 trailing weeks and 2000 so far in the
// current week, with spike_threshold = 1.4. Expect exactly one
// spending_spike alert referencing Food and "100%".
func TestPostSyncAlerts_SpendingSpike(t *testing.T) {
	s := newTestStore(t)

	// "now" is a Wednesday; its ISO week starts the preceding Monday.
	now := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	weekStart := isoWeekStart(now)
	require.Equal(t, time.Monday, weekStart.Weekday())

	for i := 1; i <= 4; i++ {
		priorWeekStart := weekStart.AddDate(0, 0, -7*i)
		seedTransaction(t, s, uuid.NewString(), priorWeekStart.AddDate(0, 0, 2), 1000, "Swiggy", "Food", domain.Debit)
	}
	seedTransaction(t, s, uuid.NewString(), weekStart.AddDate(0, 0, 1), 2000, "Swiggy", "Food", domain.Debit)

	e := New(s, 1.4, DefaultLargeTransactionAmount)
	alerts, err := e.PostSyncAlerts(context.Background(), now)
	require.NoError(t, err)

	var spikes []Alert
	for _, a := range alerts {
		if a.Type == AlertSpendingSpike {
			spikes = append(spikes, a)
		}
	}
	require.Len(t, spikes, 1)
	assert.Equal(t, "Food", spikes[0].Category)
	assert.Contains(t, spikes[0].Message, "100%")
}

func TestPostSyncAlerts_NewCategory(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	weekStart := isoWeekStart(now)
	seedTransaction(t, s, uuid.NewString(), weekStart.AddDate(0, 0, 1), 300, "NewCo", "Shopping", domain.Debit)

	e := New(s, 0, 0)
	alerts, err := e.PostSyncAlerts(context.Background(), now)
	require.NoError(t, err)

	var found bool
	for _, a := range alerts {
		if a.Type == AlertNewCategory && a.Category == "Shopping" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPostSyncAlerts_LargeTransaction(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
	weekStart := isoWeekStart(now)
	seedTransaction(t, s, uuid.NewString(), weekStart.AddDate(0, 0, 1), 15000, "Big Store", "Shopping", domain.Debit)

	e := New(s, DefaultSpikeThreshold, 10000)
	alerts, err := e.PostSyncAlerts(context.Background(), now)
	require.NoError(t, err)

	var found bool
	for _, a := range alerts {
		if a.Type == AlertLargeTransaction {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSuggestions_CategorySpike(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	currentMonth := now
	prevMonth := time.Date(now.Year(), now.Month(), 5, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	seedTransaction(t, s, uuid.NewString(), prevMonth, 400, "A", "Food", domain.Debit)
	seedTransaction(t, s, uuid.NewString(), currentMonth, 700, "A", "Food", domain.Debit)

	e := New(s, 0, 0)
	suggestions, err := e.Suggestions(context.Background())
	require.NoError(t, err)

	var found bool
	for _, sg := range suggestions {
		if strings.Contains(sg.Message, "Food") {
			found = true
		}
	}
	assert.True(t, found)
}
