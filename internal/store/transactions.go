package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// InsertTransaction inserts one transaction. A composite-key
// (email_message_id, amount, merchant, date) collision is silently
// ignored — spec.md §3 treats a repeated composite key within the same
// email as the intra-email dedup mechanism.
func (s *Store) InsertTransaction(ctx context.Context, tx domain.Transaction) (bool, error) {
	res, err := s.db.ExecContext(ctx, insertTransactionSQL, transactionArgs(tx)...)
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	return n > 0, nil
}

// InsertTransactions inserts a batch inside one transaction, returning
// the ids actually inserted (composite-key conflicts skipped).
func (s *Store) InsertTransactions(ctx context.Context, txs []domain.Transaction) ([]string, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert transactions: begin: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck

	stmt, err := dbTx.PrepareContext(ctx, insertTransactionSQL)
	if err != nil {
		return nil, fmt.Errorf("insert transactions: prepare: %w", err)
	}
	defer stmt.Close()

	var inserted []string
	for _, t := range txs {
		res, err := stmt.ExecContext(ctx, transactionArgs(t)...)
		if err != nil {
			return nil, fmt.Errorf("insert transactions: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("insert transactions: %w", err)
		}
		if n > 0 {
			inserted = append(inserted, t.ID)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("insert transactions: commit: %w", err)
	}
	return inserted, nil
}

const insertTransactionSQL = `
	INSERT INTO transactions (
		id, email_message_id, date, amount, currency, direction, type,
		merchant, account, bank, reference, description, category,
		source, confidence, needs_review, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (email_message_id, amount, merchant, date) DO NOTHING
`

func transactionArgs(t domain.Transaction) []any {
	var confidence sql.NullFloat64
	if t.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *t.Confidence, Valid: true}
	}
	return []any{
		t.ID, t.EmailMessageID, t.Date, t.Amount, t.Currency, string(t.Direction), string(t.Type),
		t.Merchant, nullIfEmpty(t.Account), nullIfEmpty(t.Bank), nullIfEmpty(t.Reference),
		nullIfEmpty(t.Description), nullIfEmpty(t.Category), string(t.Source), confidence,
		boolToInt(t.NeedsReview), t.CreatedAt, t.UpdatedAt,
	}
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// UpdateTransactionCategory sets the category override and refreshes
// updated_at.
func (s *Store) UpdateTransactionCategory(ctx context.Context, id, category string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE transactions SET category = ?, updated_at = ? WHERE id = ?`, category, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update transaction category: %w", err)
	}
	return nil
}

// UpdateTransactionMerchant sets the merchant override and refreshes
// updated_at.
func (s *Store) UpdateTransactionMerchant(ctx context.Context, id, merchant string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE transactions SET merchant = ?, updated_at = ? WHERE id = ?`, merchant, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update transaction merchant: %w", err)
	}
	return nil
}

// UpdateTransactionReview sets needs_review and refreshes updated_at.
func (s *Store) UpdateTransactionReview(ctx context.Context, id string, needsReview bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE transactions SET needs_review = ?, updated_at = ? WHERE id = ?`, boolToInt(needsReview), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update transaction review: %w", err)
	}
	return nil
}

const transactionColumns = `
	id, email_message_id, date, amount, currency, direction, type,
	merchant, account, bank, reference, description, category,
	source, confidence, needs_review, created_at, updated_at
`

func scanTransaction(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var t domain.Transaction
	var account, bank, reference, description, category sql.NullString
	var confidence sql.NullFloat64
	var direction, typ, source string
	var needsReview int

	err := row.Scan(
		&t.ID, &t.EmailMessageID, &t.Date, &t.Amount, &t.Currency, &direction, &typ,
		&t.Merchant, &account, &bank, &reference, &description, &category,
		&source, &confidence, &needsReview, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}

	t.Direction = domain.Direction(direction)
	t.Type = domain.TransactionType(typ)
	t.Source = domain.Source(source)
	t.Account = account.String
	t.Bank = bank.String
	t.Reference = reference.String
	t.Description = description.String
	t.Category = category.String
	t.NeedsReview = needsReview != 0
	if confidence.Valid {
		c := confidence.Float64
		t.Confidence = &c
	}
	return t, nil
}

// GetTransaction retrieves a single transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// buildFilter translates a ports.TransactionFilter into a WHERE clause
// and its bound args.
func buildFilter(filter ports.TransactionFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Direction != "" {
		clauses = append(clauses, "direction = ?")
		args = append(args, filter.Direction)
	}
	if filter.Bank != "" {
		clauses = append(clauses, "bank = ?")
		args = append(args, filter.Bank)
	}
	if filter.NeedsReview != nil {
		clauses = append(clauses, "needs_review = ?")
		args = append(args, boolToInt(*filter.NeedsReview))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListTransactions returns transactions matching filter, ordered
// descending by date (spec.md §4.3).
func (s *Store) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	where, args := buildFilter(filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY date DESC`

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountTransactions returns the count of transactions matching filter
// (limit/offset are ignored for counting).
func (s *Store) CountTransactions(ctx context.Context, filter ports.TransactionFilter) (int, error) {
	where, args := buildFilter(filter)
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// ReviewQueue returns transactions with needs_review = true, optionally
// filtered by source.
func (s *Store) ReviewQueue(ctx context.Context, source string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE needs_review = 1`
	var args []any
	if source != "" {
		query += ` AND source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("review queue: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("review queue: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReviewQueueCount returns the count backing ReviewQueue.
func (s *Store) ReviewQueueCount(ctx context.Context, source string) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE needs_review = 1`
	var args []any
	if source != "" {
		query += ` AND source = ?`
		args = append(args, source)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("review queue count: %w", err)
	}
	return count, nil
}
