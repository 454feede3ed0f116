package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// InsertRawEmail inserts a single raw email. A primary-key (message_id)
// collision is silently ignored (spec.md §7: this IS the dedup mechanism
// at the raw-email level) and reported back via the bool return.
func (s *Store) InsertRawEmail(ctx context.Context, email domain.RawEmail) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_emails (message_id, from_address, subject, date, body_text, body_html, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (message_id) DO NOTHING
	`, email.MessageID, email.From, email.Subject, email.Date, email.BodyText, email.BodyHTML, email.FetchedAt)
	if err != nil {
		return false, fmt.Errorf("insert raw email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert raw email: %w", err)
	}
	return n > 0, nil
}

// InsertRawEmails inserts a batch of raw emails inside one transaction,
// returning the message ids actually inserted (conflicts silently
// skipped per message).
func (s *Store) InsertRawEmails(ctx context.Context, emails []domain.RawEmail) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert raw emails: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO raw_emails (message_id, from_address, subject, date, body_text, body_html, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (message_id) DO NOTHING
	`)
	if err != nil {
		return nil, fmt.Errorf("insert raw emails: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := make([]string, 0, len(emails))
	for _, email := range emails {
		res, err := stmt.ExecContext(ctx, email.MessageID, email.From, email.Subject, email.Date, email.BodyText, email.BodyHTML, email.FetchedAt)
		if err != nil {
			return nil, fmt.Errorf("insert raw emails: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("insert raw emails: %w", err)
		}
		if n > 0 {
			inserted = append(inserted, email.MessageID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert raw emails: commit: %w", err)
	}
	return inserted, nil
}

// GetRawEmail retrieves a raw email by message id.
func (s *Store) GetRawEmail(ctx context.Context, messageID string) (*domain.RawEmail, error) {
	var e domain.RawEmail
	var bodyHTML sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT message_id, from_address, subject, date, body_text, body_html, fetched_at
		FROM raw_emails WHERE message_id = ?
	`, messageID).Scan(&e.MessageID, &e.From, &e.Subject, &e.Date, &e.BodyText, &bodyHTML, &e.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get raw email: %w", err)
	}
	e.BodyHTML = bodyHTML.String
	return &e, nil
}

// ListRawEmails returns every stored raw email, oldest first. When
// onlyMissingTransactions is true, only emails with zero rows in
// transactions are returned — the backing query for `reparse --missing`.
func (s *Store) ListRawEmails(ctx context.Context, onlyMissingTransactions bool) ([]domain.RawEmail, error) {
	query := `
		SELECT message_id, from_address, subject, date, body_text, body_html, fetched_at
		FROM raw_emails
	`
	if onlyMissingTransactions {
		query += ` WHERE message_id NOT IN (SELECT DISTINCT email_message_id FROM transactions)`
	}
	query += ` ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list raw emails: %w", err)
	}
	defer rows.Close()

	var out []domain.RawEmail
	for rows.Next() {
		var e domain.RawEmail
		var bodyHTML sql.NullString
		if err := rows.Scan(&e.MessageID, &e.From, &e.Subject, &e.Date, &e.BodyText, &bodyHTML, &e.FetchedAt); err != nil {
			return nil, fmt.Errorf("list raw emails: scan: %w", err)
		}
		e.BodyHTML = bodyHTML.String
		out = append(out, e)
	}
	return out, rows.Err()
}
