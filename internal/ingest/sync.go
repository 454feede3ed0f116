// Package ingest implements the Mail Ingestor (C4): query construction,
// paginated listing, bounded-batch fetch, and sync-cursor bookkeeping.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
	"github.com/chandrameenamohan/expense-tracker/internal/retry"
)

// ErrRateLimited is the sentinel a MailProvider implementation wraps its
// transient errors in; Syncer's retry predicate matches on it.
var ErrRateLimited = errors.New("mail provider: rate limited")

// ErrAuthRevoked is the sentinel a MailProvider implementation wraps its
// authorization errors in. The command surface treats this as the
// trigger to delete the saved token and re-authorize (spec.md §7).
var ErrAuthRevoked = errors.New("mail provider: authorization revoked")

// Options configures one Sync call.
type Options struct {
	Senders               []string
	SubjectKeywords       []string
	Since                 *time.Time // caller override, highest precedence
	DefaultLookbackMonths int
	FetchBatchSize        int // default 50
	Retry                 retry.Options
}

// Result is C4's return contract (spec.md §4.4).
type Result struct {
	MessagesFound   int
	NewEmailsStored int
	NewMessageIDs   []string
	SyncTimestamp   time.Time
}

// Syncer orchestrates one ingestion run against a MailProvider and Store.
type Syncer struct {
	provider ports.MailProvider
	store    ports.Store
	logger   zerolog.Logger
}

// New constructs a Syncer.
func New(provider ports.MailProvider, store ports.Store, logger zerolog.Logger) *Syncer {
	return &Syncer{provider: provider, store: store, logger: logger}
}

// Sync runs the full protocol from spec.md §4.4: resolve since, paginate
// listing, fetch in bounded batches, persist, advance the cursor.
func (s *Syncer) Sync(ctx context.Context, opts Options) (Result, error) {
	since, err := s.resolveSince(ctx, opts)
	if err != nil {
		return Result{}, fmt.Errorf("sync: resolve since: %w", err)
	}

	query := BuildQuery(opts.Senders, opts.SubjectKeywords, since)
	s.logger.Debug().Str("query", query).Msg("ingest: resolved search query")

	ids, err := s.listAll(ctx, query, opts.Retry)
	if err != nil {
		return Result{}, fmt.Errorf("sync: list messages: %w", err)
	}

	batchSize := opts.FetchBatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	emails, err := s.fetchInBatches(ctx, ids, batchSize, opts.Retry)
	if err != nil {
		return Result{}, fmt.Errorf("sync: fetch messages: %w", err)
	}

	storedIDs, err := s.store.InsertRawEmails(ctx, emails)
	if err != nil {
		return Result{}, fmt.Errorf("sync: persist raw emails: %w", err)
	}

	now := time.Now().UTC()
	state, err := s.store.GetSyncState(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("sync: read prior state: %w", err)
	}
	newState := domain.SyncState{
		LastSyncTimestamp: now,
		TotalSyncedCount:  state.TotalSyncedCount + int64(len(storedIDs)),
	}
	if len(ids) > 0 {
		newState.LastMessageID = ids[0]
	} else {
		newState.LastMessageID = state.LastMessageID
	}
	if err := s.store.SaveSyncState(ctx, newState); err != nil {
		return Result{}, fmt.Errorf("sync: save state: %w", err)
	}

	return Result{
		MessagesFound:   len(ids),
		NewEmailsStored: len(storedIDs),
		NewMessageIDs:   storedIDs,
		SyncTimestamp:   now,
	}, nil
}

// resolveSince implements the precedence options.since >
// last_sync_timestamp > now - default_lookback_months (spec.md §4.4 step
// 1, resolved per SPEC_FULL.md §9: user intent wins over the stored
// cursor).
func (s *Syncer) resolveSince(ctx context.Context, opts Options) (*time.Time, error) {
	if opts.Since != nil {
		return opts.Since, nil
	}

	state, err := s.store.GetSyncState(ctx)
	if err != nil {
		return nil, err
	}
	if !state.LastSyncTimestamp.IsZero() {
		t := state.LastSyncTimestamp
		return &t, nil
	}

	lookback := opts.DefaultLookbackMonths
	if lookback <= 0 {
		lookback = 3
	}
	t := time.Now().UTC().AddDate(0, -lookback, 0)
	return &t, nil
}

func (s *Syncer) listAll(ctx context.Context, query string, retryOpts retry.Options) ([]string, error) {
	var all []string
	pageToken := ""
	for {
		var nextToken string
		page, err := retry.Do(ctx, retryOpts, isRateLimited, func(ctx context.Context) ([]string, error) {
			ids, next, err := s.provider.Search(ctx, query, pageToken)
			if err != nil {
				return nil, err
			}
			nextToken = next
			return ids, nil
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}
	return all, nil
}

// fetchInBatches fetches message bodies in bounded batches, each batch
// completing before the next starts (spec.md §4.4 step 3: bounded
// concurrency, predictable resource use).
func (s *Syncer) fetchInBatches(ctx context.Context, ids []string, batchSize int, retryOpts retry.Options) ([]domain.RawEmail, error) {
	var out []domain.RawEmail
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		emails, err := retry.Do(ctx, retryOpts, isRateLimited, func(ctx context.Context) ([]domain.RawEmail, error) {
			return s.provider.Fetch(ctx, batch)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, emails...)
	}
	return out, nil
}

func isRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
