package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// TableExists reports whether a table is present in the database.
func TableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`, table).Scan(&exists)
	if err != nil {
		return false, wrapDBError("check table", err)
	}
	return exists, nil
}

// ColumnExists reports whether a column is present on a table.
func ColumnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0
		FROM pragma_table_info(?)
		WHERE name = ?
	`, table, column).Scan(&exists)
	if err != nil {
		return false, wrapDBError(fmt.Sprintf("check column %s.%s", table, column), err)
	}
	return exists, nil
}

// Apply adds the plan's columns to its table, in order. Columns that already
// exist are skipped. The table must exist before any column is attempted;
// a missing table aborts the whole run with ErrTableMissing.
//
// Each ALTER is an independent statement. If column N fails, columns before N
// stay applied; the error reports which column failed and the Result lists
// what was done up to that point.
func Apply(ctx context.Context, db *sql.DB, plan Plan) (Result, error) {
	var res Result
	if err := plan.Validate(); err != nil {
		return res, err
	}

	exists, err := TableExists(ctx, db, plan.Table)
	if err != nil {
		return res, err
	}
	if !exists {
		return res, fmt.Errorf("apply to %s: %w", plan.Table, ErrTableMissing)
	}

	for _, col := range plan.Columns {
		present, err := ColumnExists(ctx, db, plan.Table, col.Name)
		if err != nil {
			return res, err
		}
		if present {
			res.Skipped = append(res.Skipped, col.Name)
			continue
		}
		if _, err := db.ExecContext(ctx, col.DDL(plan.Table)); err != nil {
			return res, wrapDBError(fmt.Sprintf("add column %s.%s", plan.Table, col.Name), err)
		}
		res.Added = append(res.Added, col.Name)
	}
	return res, nil
}
