package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Verify returns the table's column metadata in declaration order.
// It is the read-only post-condition check for Apply: after a successful run,
// every plan column appears in the returned list.
//
// pragma_table_info yields no rows for a missing table rather than an error,
// so absence is mapped to ErrTableMissing explicitly.
func Verify(ctx context.Context, db *sql.DB, table string) (_ []ColumnInfo, retErr error) {
	rows, err := db.QueryContext(ctx, `
		SELECT cid, name, type, "notnull", dflt_value, pk
		FROM pragma_table_info(?)
		ORDER BY cid
	`, table)
	if err != nil {
		return nil, wrapDBError("read table info", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("failed to close table info rows: %w", closeErr))
		}
	}()

	var cols []ColumnInfo
	for rows.Next() {
		var ci ColumnInfo
		var notnull, pk int
		if err := rows.Scan(&ci.CID, &ci.Name, &ci.Type, &notnull, &ci.Default, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		ci.NotNull = notnull != 0
		ci.PK = pk != 0
		cols = append(cols, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading column info: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("verify %s: %w", table, ErrTableMissing)
	}
	return cols, nil
}

// MissingColumns returns the subset of names not present in the table,
// preserving the requested order. Used by verification to report exactly
// which expected columns are absent.
func MissingColumns(ctx context.Context, db *sql.DB, table string, names []string) ([]string, error) {
	cols, err := Verify(ctx, db, table)
	if err != nil {
		return nil, err
	}
	// SQLite identifiers are case-insensitive.
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[strings.ToLower(c.Name)] = true
	}
	var missing []string
	for _, n := range names {
		if !present[strings.ToLower(n)] {
			missing = append(missing, n)
		}
	}
	return missing, nil
}
