// Package schema implements additive schema migration for SQLite databases.
//
// The only supported mutation is adding a column to an existing table. Each
// addition is guarded by a pragma_table_info lookup so a plan can be re-applied
// safely: columns that already exist are skipped instead of erroring the run.
package schema

import (
	"database/sql"
	"fmt"
	"strings"
)

// Column specifies a single column to add to a table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  string // raw SQL literal, empty means no default
}

// DDL renders the ALTER TABLE statement that adds this column to table.
func (c Column) DDL(table string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(table), quoteIdent(c.Name), c.Type)
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		fmt.Fprintf(&b, " DEFAULT %s", c.Default)
	}
	return b.String()
}

// Plan is an ordered set of column additions against one table.
// Application is strictly sequential; there is no transaction wrapping, so a
// failure partway through leaves earlier columns in place.
type Plan struct {
	Table   string
	Columns []Column
}

// Validate checks that the plan names a table and at least one column, and
// that no column is specified twice.
func (p Plan) Validate() error {
	if p.Table == "" {
		return fmt.Errorf("plan has no target table")
	}
	if len(p.Columns) == 0 {
		return fmt.Errorf("plan for table %q has no columns", p.Table)
	}
	seen := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		if c.Name == "" {
			return fmt.Errorf("plan for table %q has a column with no name", p.Table)
		}
		if c.Type == "" {
			return fmt.Errorf("column %q has no type", c.Name)
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			return fmt.Errorf("column %q specified twice", c.Name)
		}
		seen[key] = true
	}
	return nil
}

// ColumnInfo is one row of PRAGMA table_info, in declaration order.
type ColumnInfo struct {
	CID     int
	Name    string
	Type    string
	NotNull bool
	Default sql.NullString
	PK      bool
}

// Result reports what an Apply run did, in plan order.
type Result struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}

// quoteIdent wraps an identifier in double quotes, escaping embedded quotes.
// Migration scripts are operator-supplied, but identifiers still pass through
// parameterless DDL, so quoting is not optional.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
