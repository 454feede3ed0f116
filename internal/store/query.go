package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// QueryRows executes an already-guarded read-only statement (the caller,
// C8, has already applied the write-keyword guard from spec.md §4.8) and
// returns its result as a generic string-valued table, since the column
// shape of model-generated SQL is not known ahead of time.
func (s *Store) QueryRows(ctx context.Context, query string) (*ports.QueryResult, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query rows: columns: %w", err)
	}

	result := &ports.QueryResult{Columns: columns}
	raw := make([]sql.RawBytes, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("query rows: scan: %w", err)
		}
		row := make([]string, len(columns))
		for i, v := range raw {
			if v == nil {
				row[i] = ""
			} else {
				row[i] = string(v)
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}
