// Package domain holds the entity types shared across every component of
// the pipeline: the raw email a provider handed us, the transactions the
// parsing pipeline extracted from it, and the small supporting records the
// categorizer, dedup engine, and review queue read and write.
package domain

import "time"

// Direction is the sign of money movement on a transaction. Amount itself
// is always positive; direction carries the sign exclusively.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// TransactionType is the closed set of transaction rails this tracker
// understands.
type TransactionType string

const (
	TypeUPI          TransactionType = "upi"
	TypeCreditCard   TransactionType = "credit_card"
	TypeBankTransfer TransactionType = "bank_transfer"
	TypeSIP          TransactionType = "sip"
	TypeLoan         TransactionType = "loan"
)

// Source identifies which tier of the parsing pipeline produced a
// transaction.
type Source string

const (
	SourceRegex Source = "regex"
	SourceAI    Source = "ai"
)

// ConfidenceReviewThreshold is the confidence below which an AI-sourced
// transaction is routed to the review queue (spec.md §3, §4.5).
const ConfidenceReviewThreshold = 0.7

// RawEmail is a single provider message, persisted once per unique
// MessageID and never mutated afterward.
type RawEmail struct {
	MessageID string
	From      string
	Subject   string
	Date      time.Time
	BodyText  string
	BodyHTML  string
	FetchedAt time.Time
}

// Transaction is one money-movement event extracted from a RawEmail.
// Composite uniqueness is (EmailMessageID, Amount, Merchant, Date); a
// single email may legitimately yield several transactions that differ on
// at least one of those four fields.
type Transaction struct {
	ID              string
	EmailMessageID  string
	Date            time.Time
	Amount          float64
	Currency        string
	Direction       Direction
	Type            TransactionType
	Merchant        string
	Account         string
	Bank            string
	Reference       string
	Description     string
	Category        string
	Source          Source
	Confidence      *float64
	NeedsReview     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NeedsReviewForConfidence implements the invariant from spec.md §3:
// needs_review ⇔ source = ai ∧ confidence < ConfidenceReviewThreshold.
func NeedsReviewForConfidence(source Source, confidence float64) bool {
	return source == SourceAI && confidence < ConfidenceReviewThreshold
}

// CategoryCorrection is an append-only record of a user overriding the
// category the categorizer assigned. It feeds back into C6 as a few-shot
// example for subsequent transactions from the same merchant.
type CategoryCorrection struct {
	ID                int64
	Merchant          string
	Description       string
	OriginalCategory  string
	CorrectedCategory string
	CreatedAt         time.Time
}

// DuplicateGroup records that one transaction is a confirmed duplicate of
// another, earlier one. KeptTransactionID < DuplicateTransactionID by the
// ordering used when the candidate pair was selected.
type DuplicateGroup struct {
	ID                     int64
	KeptTransactionID      string
	DuplicateTransactionID string
	Reason                 string
	Confidence             *float64
	CreatedAt              time.Time
}

// SyncState is the single-row key-value record tracking ingestion
// progress. TotalSyncedCount only ever increases.
type SyncState struct {
	LastSyncTimestamp time.Time
	LastMessageID     string
	TotalSyncedCount  int64
}

// EvalVerdict is the user's ground-truth label on a transaction, used to
// build future regression sets.
type EvalVerdict string

const (
	VerdictCorrect EvalVerdict = "correct"
	VerdictWrong   EvalVerdict = "wrong"
)

// EvalFlag is an append-only ground-truth label attached to a transaction.
type EvalFlag struct {
	ID            int64
	TransactionID string
	Verdict       EvalVerdict
	Notes         string
	CreatedAt     time.Time
}
