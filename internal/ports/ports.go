// Package ports declares the interfaces every core component is
// constructed against. Production wiring (cmd/expense-tracker) supplies
// the real adapters (internal/store, internal/ingest, internal/llm);
// tests inject fakes. Components take the store and the mail provider
// through these interfaces; the LLM gateway is passed as a concrete
// *llm.Gateway, with ProcessRunner as its injectable seam. This mirrors
// the driving/driven-port split the teacher repo uses between
// internal/application and internal/adapters.
package ports

import (
	"context"
	"time"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// TransactionFilter narrows a Store.ListTransactions/CountTransactions
// call. Zero values mean "no filter on this field".
type TransactionFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Type        string
	Category    string
	Direction   string
	Bank        string
	NeedsReview *bool
	Limit       int
	Offset      int
}

// Store is the contract for the local persistence layer (C3). It is the
// only component permitted to hold long-lived mutable state; every other
// component borrows values for the duration of one call.
type Store interface {
	// Raw email writes.
	InsertRawEmail(ctx context.Context, email domain.RawEmail) (bool, error)
	InsertRawEmails(ctx context.Context, emails []domain.RawEmail) ([]string, error)
	GetRawEmail(ctx context.Context, messageID string) (*domain.RawEmail, error)
	ListRawEmails(ctx context.Context, onlyMissingTransactions bool) ([]domain.RawEmail, error)

	// Transaction writes.
	InsertTransaction(ctx context.Context, tx domain.Transaction) (bool, error)
	InsertTransactions(ctx context.Context, txs []domain.Transaction) ([]string, error)
	UpdateTransactionCategory(ctx context.Context, id, category string) error
	UpdateTransactionMerchant(ctx context.Context, id, merchant string) error
	UpdateTransactionReview(ctx context.Context, id string, needsReview bool) error

	// Transaction reads.
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	CountTransactions(ctx context.Context, filter TransactionFilter) (int, error)
	ReviewQueue(ctx context.Context, source string) ([]domain.Transaction, error)
	ReviewQueueCount(ctx context.Context, source string) (int, error)

	// Category corrections (feedback loop for C6).
	InsertCategoryCorrection(ctx context.Context, c domain.CategoryCorrection) error
	CorrectionsByMerchant(ctx context.Context, merchant string, limit int) ([]domain.CategoryCorrection, error)
	RecentCorrections(ctx context.Context, limit int) ([]domain.CategoryCorrection, error)

	// Dedup.
	MarkAsDuplicate(ctx context.Context, group domain.DuplicateGroup) (bool, error)
	DuplicateCandidates(ctx context.Context, dateToleranceDays int, newIDs []string) ([]TransactionPair, error)
	HasDuplicateRecord(ctx context.Context, duplicateID string) (bool, error)

	// Sync state.
	GetSyncState(ctx context.Context) (domain.SyncState, error)
	SaveSyncState(ctx context.Context, state domain.SyncState) error

	// Eval flags.
	InsertEvalFlag(ctx context.Context, flag domain.EvalFlag) error

	// NL query execution (C8), under the read-only guard.
	QueryRows(ctx context.Context, sql string) (*QueryResult, error)

	Close() error
}

// TransactionPair is a candidate pair emitted by Store.DuplicateCandidates,
// already satisfying the SQL-side filters in spec.md §4.7 (matching
// amount/direction, cross-email, within date tolerance, t1.id < t2.id).
type TransactionPair struct {
	First  domain.Transaction
	Second domain.Transaction
}

// QueryResult is the tabular result of a read-only SQL statement executed
// by the NL query engine.
type QueryResult struct {
	Columns []string
	Rows    [][]string
}

// MailProvider is the contract C4 uses to talk to a mail backend (C11's
// OAuth boilerplate and MIME decoding live behind this interface).
type MailProvider interface {
	// Search returns one page of message ids matching query and the
	// provider's cursor for the next page ("" when there are no more).
	// pageToken is empty on the first call; the caller loops over pages.
	Search(ctx context.Context, query string, pageToken string) (ids []string, nextPageToken string, err error)
	// Fetch retrieves full message bodies for the given ids, in one
	// request batch.
	Fetch(ctx context.Context, ids []string) ([]domain.RawEmail, error)
}

// ProcessRunner is the pluggable capability behind the LLM gateway (C1):
// production wraps the real subprocess, tests inject canned responses.
type ProcessRunner interface {
	Run(ctx context.Context, args []string) (exitCode int, stdout string, stderr string, err error)
}
