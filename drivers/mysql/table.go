package driver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/datazip-inc/dskit/constants"
	"github.com/datazip-inc/dskit/pkg/jdbc"
	"github.com/datazip-inc/dskit/pkg/pager"
	"github.com/datazip-inc/dskit/types"
	"github.com/datazip-inc/dskit/utils/logger"
)

// Table is a handle on one table with a single orderable primary key
type Table struct {
	client     *sqlx.DB
	name       string
	primaryKey string
}

func (t *Table) Name() string       { return t.name }
func (t *Table) PrimaryKey() string { return t.primaryKey }

// Drop removes the table if it exists
func (t *Table) Drop(ctx context.Context) error {
	if _, err := t.client.ExecContext(ctx, jdbc.MySQLDropTableQuery(t.name)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", t.name, err)
	}
	return nil
}

// Truncate removes every row of the table
func (t *Table) Truncate(ctx context.Context) error {
	if _, err := t.client.ExecContext(ctx, jdbc.MySQLTruncateQuery(t.name)); err != nil {
		return t.classify("truncate", err)
	}
	return nil
}

// Count returns the number of rows; a missing table yields types.ErrTableNotExist
func (t *Table) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := t.client.QueryRowxContext(ctx, jdbc.MySQLCountQuery(t.name)).Scan(&count); err != nil {
		return 0, t.classify("count rows of", err)
	}
	return count, nil
}

// InsertOne inserts record as a new row
func (t *Table) InsertOne(ctx context.Context, record types.Record) error {
	if len(record) == 0 {
		return types.Preconditionf("cannot insert an empty row into %s", t.name)
	}
	return t.insert(ctx, t.client, record)
}

// SaveOne replaces the row sharing record's primary key: the old row is
// deleted and record inserted within one transaction.
func (t *Table) SaveOne(ctx context.Context, record types.Record) error {
	id, err := t.keyOf(record)
	if err != nil {
		return err
	}

	return jdbc.WithTx(ctx, t.client, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, jdbc.MySQLDeleteByKeyQuery(t.name, t.primaryKey), id); err != nil {
			return t.classify("delete row from", err)
		}
		return t.insert(ctx, tx, record)
	})
}

// UpdateOne overlays the non-empty fields of record onto the stored row and
// saves the result. A missing stored row is treated as empty.
func (t *Table) UpdateOne(ctx context.Context, record types.Record) error {
	id, err := t.keyOf(record)
	if err != nil {
		return err
	}

	merged, err := t.GetByID(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		merged = types.Record{}
	} else if err != nil {
		return err
	}

	for key, value := range record {
		if !types.IsEmpty(value) {
			merged[key] = value
		}
	}
	merged[t.primaryKey] = id
	return t.SaveOne(ctx, merged)
}

// GetByID returns the single row whose primary key equals id
func (t *Table) GetByID(ctx context.Context, id any) (types.Record, error) {
	records, err := jdbc.CollectRecords(ctx, t.client.QueryContext, jdbc.MySQLSelectByKeyQuery(t.name, t.primaryKey), id)
	if err != nil {
		return nil, t.classify("select row from", err)
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%w: %s[%s=%v]", types.ErrNotFound, t.name, t.primaryKey, id)
	case 1:
		return records[0], nil
	default:
		return nil, fmt.Errorf("%w: %d rows in %s[%s=%v]", types.ErrMultipleFound, len(records), t.name, t.primaryKey, id)
	}
}

// DeleteByID deletes the rows whose primary key equals id and reports how
// many were removed.
func (t *Table) DeleteByID(ctx context.Context, id any) (int64, error) {
	result, err := t.client.ExecContext(ctx, jdbc.MySQLDeleteByKeyQuery(t.name, t.primaryKey), id)
	if err != nil {
		return 0, t.classify("delete row from", err)
	}
	return result.RowsAffected()
}

// All walks the table in ascending primary-key order, pageSize rows per
// query, keeping only rows that equal every value in conditions. The key
// must be orderable and comparable with -1.
func (t *Table) All(ctx context.Context, pageSize int, conditions map[string]any) *pager.Iterator[any] {
	if pageSize <= 0 {
		pageSize = constants.MySQLDefaultPageSize
	}

	columns := make([]string, 0, len(conditions))
	for column := range conditions {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	query := jdbc.MySQLKeysetScanQuery(t.name, t.primaryKey, columns)
	logger.Debugf("keyset scan of %s: %s", t.name, query)

	fetch := func(ctx context.Context, lastID any) ([]types.Record, any, error) {
		args := make([]any, 0, len(columns)+2)
		for _, column := range columns {
			args = append(args, conditions[column])
		}
		args = append(args, lastID, pageSize)

		records, err := jdbc.CollectRecords(ctx, t.client.QueryContext, query, args...)
		if err != nil {
			return nil, lastID, t.classify("scan", err)
		}
		if len(records) == 0 {
			return nil, lastID, nil
		}

		next, found := records[len(records)-1][t.primaryKey]
		if !found {
			return nil, lastID, fmt.Errorf("primary key column[%s] missing from rows of %s", t.primaryKey, t.name)
		}
		return records, next, nil
	}

	return pager.New[any](constants.MySQLKeysetStart, fetch)
}

func (t *Table) keyOf(record types.Record) (any, error) {
	id, found := record[t.primaryKey]
	if !found || id == nil {
		return nil, types.Preconditionf("row for %s must carry primary key column[%s]", t.name, t.primaryKey)
	}
	return id, nil
}

func (t *Table) insert(ctx context.Context, exec sqlx.ExecerContext, record types.Record) error {
	columns := record.Keys()
	values := make([]any, len(columns))
	for i, column := range columns {
		values[i] = record[column]
	}

	if _, err := exec.ExecContext(ctx, jdbc.MySQLInsertQuery(t.name, columns), values...); err != nil {
		return t.classify("insert row into", err)
	}
	return nil
}

func (t *Table) classify(action string, err error) error {
	if isMissingTable(err) {
		return fmt.Errorf("%w: %s: %s", types.ErrTableNotExist, t.name, err)
	}
	return fmt.Errorf("failed to %s %s: %w", action, t.name, err)
}
