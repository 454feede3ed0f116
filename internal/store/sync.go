package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// GetSyncState reads the sync-state key-value table (one row per field). A
// never-synced store returns the zero-value SyncState.
func (s *Store) GetSyncState(ctx context.Context) (domain.SyncState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM sync_state`)
	if err != nil {
		return domain.SyncState{}, fmt.Errorf("get sync state: %w", err)
	}
	defer rows.Close()

	var state domain.SyncState
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.SyncState{}, fmt.Errorf("get sync state: scan: %w", err)
		}
		switch key {
		case "last_sync_timestamp":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				state.LastSyncTimestamp = t
			}
		case "last_message_id":
			state.LastMessageID = value
		case "total_synced_count":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				state.TotalSyncedCount = n
			}
		}
	}
	return state, rows.Err()
}

// SaveSyncState persists the sync state. total_synced_count is
// monotonic: callers are expected to have already computed the new
// total as a non-decreasing value (spec.md §3 "SyncState").
func (s *Store) SaveSyncState(ctx context.Context, state domain.SyncState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save sync state: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	upsert := func(key, value string) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sync_state (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value
		`, key, value)
		return err
	}

	if err := upsert("last_sync_timestamp", state.LastSyncTimestamp.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	if err := upsert("last_message_id", state.LastMessageID); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	if err := upsert("total_synced_count", strconv.FormatInt(state.TotalSyncedCount, 10)); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save sync state: commit: %w", err)
	}
	return nil
}

// InsertEvalFlag appends a ground-truth label on a transaction.
func (s *Store) InsertEvalFlag(ctx context.Context, flag domain.EvalFlag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eval_flags (transaction_id, verdict, notes, created_at)
		VALUES (?, ?, ?, ?)
	`, flag.TransactionID, string(flag.Verdict), nullIfEmpty(flag.Notes), flag.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert eval flag: %w", err)
	}
	return nil
}
