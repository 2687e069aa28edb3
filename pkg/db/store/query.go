package store

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

// Execute runs a parameterized statement and returns every result row.
// Arguments are always bound, never interpolated.
func (s *SQLiteStore) Execute(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// ExecuteWithID behaves like Execute and additionally returns the rowid
// assigned by the most recent insert on the same connection.
func (s *SQLiteStore) ExecuteWithID(ctx context.Context, query string, args ...any) ([]Row, int64, error) {
	var result []Row
	var id int64

	run := func(tx *gorm.DB) error {
		rows, err := tx.Raw(query, args...).Rows()
		if err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		result, err = scanRows(rows)
		rows.Close()
		if err != nil {
			return err
		}

		if err := tx.Raw("SELECT last_insert_rowid()").Scan(&id).Error; err != nil {
			return fmt.Errorf("failed to read last insert id: %w", err)
		}
		return nil
	}

	// A transaction already owns a single connection.
	var err error
	if s.inTx {
		err = run(s.db.WithContext(ctx))
	} else {
		err = s.db.WithContext(ctx).Connection(run)
	}
	if err != nil {
		return nil, 0, err
	}

	return result, id, nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := []Row{}
	for rows.Next() {
		values := make(Row, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, value := range values {
			if b, ok := value.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return result, nil
}

// chunk splits values into consecutive slices of at most size elements so
// IN (...) lists stay below the engine's bound parameter limit.
func chunk(values []string, size int) [][]string {
	var chunks [][]string
	for size < len(values) {
		values, chunks = values[size:], append(chunks, values[:size:size])
	}
	if len(values) > 0 {
		chunks = append(chunks, values)
	}
	return chunks
}
