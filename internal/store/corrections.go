package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// InsertCategoryCorrection appends a correction row. Append-only: never
// updated or deleted.
func (s *Store) InsertCategoryCorrection(ctx context.Context, c domain.CategoryCorrection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_corrections (merchant, description, original_category, corrected_category, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.Merchant, nullIfEmpty(c.Description), c.OriginalCategory, c.CorrectedCategory, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category correction: %w", err)
	}
	return nil
}

func scanCorrection(row interface{ Scan(...any) error }) (domain.CategoryCorrection, error) {
	var c domain.CategoryCorrection
	var description sql.NullString
	err := row.Scan(&c.ID, &c.Merchant, &description, &c.OriginalCategory, &c.CorrectedCategory, &c.CreatedAt)
	c.Description = description.String
	return c, err
}

const correctionColumns = `id, merchant, description, original_category, corrected_category, created_at`

// CorrectionsByMerchant returns the most recent corrections for a given
// merchant, most recent first, capped at limit — the primary few-shot
// signal for C6 (spec.md §4.6).
func (s *Store) CorrectionsByMerchant(ctx context.Context, merchant string, limit int) ([]domain.CategoryCorrection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+correctionColumns+` FROM category_corrections
		WHERE merchant = ? ORDER BY created_at DESC LIMIT ?
	`, merchant, limit)
	if err != nil {
		return nil, fmt.Errorf("corrections by merchant: %w", err)
	}
	defer rows.Close()

	var out []domain.CategoryCorrection
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("corrections by merchant: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RecentCorrections returns the most recent corrections across all
// merchants, used by C6 to backfill a merchant's few-shot list when it
// has fewer than the target count of its own.
func (s *Store) RecentCorrections(ctx context.Context, limit int) ([]domain.CategoryCorrection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+correctionColumns+` FROM category_corrections
		ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent corrections: %w", err)
	}
	defer rows.Close()

	var out []domain.CategoryCorrection
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("recent corrections: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
