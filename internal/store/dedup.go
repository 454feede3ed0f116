package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// MarkAsDuplicate records that duplicate is a confirmed duplicate of
// kept. The UNIQUE constraint on duplicate_transaction_id makes this
// idempotent: re-running dedup over an already-processed pair inserts
// nothing further (spec.md §4.7, §8 "Idempotent dedup").
func (s *Store) MarkAsDuplicate(ctx context.Context, group domain.DuplicateGroup) (bool, error) {
	var confidence sql.NullFloat64
	if group.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *group.Confidence, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO duplicate_groups (kept_transaction_id, duplicate_transaction_id, reason, confidence, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (duplicate_transaction_id) DO NOTHING
	`, group.KeptTransactionID, group.DuplicateTransactionID, group.Reason, confidence, group.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("mark as duplicate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark as duplicate: %w", err)
	}
	return n > 0, nil
}

// HasDuplicateRecord reports whether duplicateID already appears as the
// duplicate side of an existing group.
func (s *Store) HasDuplicateRecord(ctx context.Context, duplicateID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM duplicate_groups WHERE duplicate_transaction_id = ? LIMIT 1
	`, duplicateID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has duplicate record: %w", err)
	}
	return true, nil
}

// DuplicateCandidates implements the SQL candidate selection from
// spec.md §4.7: cross-email pairs with matching amount and direction,
// t1.id < t2.id (canonical ordering, so each pair is emitted once),
// within dateToleranceDays of each other. When newIDs is non-empty, at
// least one side of the pair must be in that set.
func (s *Store) DuplicateCandidates(ctx context.Context, dateToleranceDays int, newIDs []string) ([]ports.TransactionPair, error) {
	query := `
		SELECT ` + prefixColumns("t1", transactionColumns) + `, ` + prefixColumns("t2", transactionColumns) + `
		FROM transactions t1
		JOIN transactions t2
			ON t1.amount = t2.amount
			AND t1.direction = t2.direction
			AND t1.id < t2.id
			AND t1.email_message_id != t2.email_message_id
			AND ABS(JULIANDAY(t1.date) - JULIANDAY(t2.date)) <= ?
	`
	args := []any{dateToleranceDays}

	if len(newIDs) > 0 {
		placeholders := make([]string, len(newIDs))
		for i, id := range newIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		// second occurrence of the same placeholder list for t2.id
		for _, id := range newIDs {
			placeholders = append(placeholders, "?")
			args = append(args, id)
		}
		half := len(newIDs)
		query += fmt.Sprintf(" WHERE t1.id IN (%s) OR t2.id IN (%s)",
			strings.Join(placeholders[:half], ","), strings.Join(placeholders[half:], ","))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("duplicate candidates: %w", err)
	}
	defer rows.Close()

	var pairs []ports.TransactionPair
	for rows.Next() {
		first, second, err := scanTransactionPair(rows)
		if err != nil {
			return nil, fmt.Errorf("duplicate candidates: scan: %w", err)
		}
		pairs = append(pairs, ports.TransactionPair{First: first, Second: second})
	}
	return pairs, rows.Err()
}

// prefixColumns rewrites a comma-separated column list with a table
// alias prefix, e.g. "id, date" -> "t1.id, t1.date".
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

const transactionColumnCount = 18

func scanTransactionPair(rows *sql.Rows) (domain.Transaction, domain.Transaction, error) {
	dest := make([]any, 0, transactionColumnCount*2)
	var t1, t2 domain.Transaction
	var acc1, bank1, ref1, desc1, cat1, acc2, bank2, ref2, desc2, cat2 sql.NullString
	var conf1, conf2 sql.NullFloat64
	var dir1, typ1, src1, dir2, typ2, src2 string
	var review1, review2 int

	dest = append(dest,
		&t1.ID, &t1.EmailMessageID, &t1.Date, &t1.Amount, &t1.Currency, &dir1, &typ1,
		&t1.Merchant, &acc1, &bank1, &ref1, &desc1, &cat1, &src1, &conf1, &review1, &t1.CreatedAt, &t1.UpdatedAt,
		&t2.ID, &t2.EmailMessageID, &t2.Date, &t2.Amount, &t2.Currency, &dir2, &typ2,
		&t2.Merchant, &acc2, &bank2, &ref2, &desc2, &cat2, &src2, &conf2, &review2, &t2.CreatedAt, &t2.UpdatedAt,
	)

	if err := rows.Scan(dest...); err != nil {
		return t1, t2, err
	}

	t1.Direction, t2.Direction = domain.Direction(dir1), domain.Direction(dir2)
	t1.Type, t2.Type = domain.TransactionType(typ1), domain.TransactionType(typ2)
	t1.Source, t2.Source = domain.Source(src1), domain.Source(src2)
	t1.Account, t2.Account = acc1.String, acc2.String
	t1.Bank, t2.Bank = bank1.String, bank2.String
	t1.Reference, t2.Reference = ref1.String, ref2.String
	t1.Description, t2.Description = desc1.String, desc2.String
	t1.Category, t2.Category = cat1.String, cat2.String
	t1.NeedsReview, t2.NeedsReview = review1 != 0, review2 != 0
	if conf1.Valid {
		c := conf1.Float64
		t1.Confidence = &c
	}
	if conf2.Valid {
		c := conf2.Float64
		t2.Confidence = &c
	}
	return t1, t2, nil
}
