package jdbc

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/datazip-inc/dskit/types"
)

type Reader[T types.Iterable] struct {
	query string
	args  []any
	ctx   context.Context

	exec func(ctx context.Context, query string, args ...any) (T, error)
}

func NewReader[T types.Iterable](ctx context.Context, baseQuery string,
	exec func(ctx context.Context, query string, args ...any) (T, error), args ...any) *Reader[T] {
	setter := &Reader[T]{
		query: baseQuery,
		ctx:   ctx,
		exec:  exec,
		args:  args,
	}

	return setter
}

func (o *Reader[T]) Capture(onCapture func(T) error) error {
	if strings.HasSuffix(o.query, ";") {
		return fmt.Errorf("base query ends with ';': %s", o.query)
	}

	rows, err := o.exec(o.ctx, o.query, o.args...)
	if err != nil {
		return err
	}
	if closer, ok := any(rows).(interface{ Close() error }); ok {
		defer closer.Close()
	}

	for rows.Next() {
		err := onCapture(rows)
		if err != nil {
			return err
		}
	}

	return rows.Err()
}

// MapScan scans the current row into a record keyed by column name.
// []byte values are returned as string.
func MapScan(rows *sql.Rows) (types.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	scanValues := make([]any, len(columns))
	for i := range scanValues {
		scanValues[i] = new(any) // Allocate pointers for scanning
	}

	if err := rows.Scan(scanValues...); err != nil {
		return nil, err
	}

	record := make(types.Record, len(columns))
	for i, col := range columns {
		val := *(scanValues[i].(*any)) // Dereference pointer before storing
		if b, ok := val.([]byte); ok {
			val = string(b)
		}
		record[col] = val
	}

	return record, nil
}

// CollectRecords runs query and returns every row as a record
func CollectRecords(ctx context.Context, exec func(ctx context.Context, query string, args ...any) (*sql.Rows, error), query string, args ...any) ([]types.Record, error) {
	var records []types.Record
	err := NewReader(ctx, query, exec, args...).Capture(func(rows *sql.Rows) error {
		record, err := MapScan(rows)
		if err != nil {
			return fmt.Errorf("failed to scan row: %s", err)
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
