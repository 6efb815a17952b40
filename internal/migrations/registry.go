// Package migrations holds the built-in schema migrations, one file per
// migration, applied in registration order.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkarpenko/smig/internal/schema"
)

// Migration is one registered schema change: a name for reporting and the
// column-add plan it applies.
type Migration struct {
	Name string
	Plan schema.Plan
}

// registry lists all migrations in application order. Append-only: entries
// are never reordered or removed once released.
var registry = []Migration{
	{Name: "001_user_name_columns", Plan: UserNameColumnsPlan},
}

// All returns the registered migrations in application order.
func All() []Migration {
	out := make([]Migration, len(registry))
	copy(out, registry)
	return out
}

// Names returns the registered migration names, for inspection output.
func Names() []string {
	names := make([]string, len(registry))
	for i, m := range registry {
		names[i] = m.Name
	}
	return names
}

// Run applies every registered migration in order, stopping at the first
// failure. Already-applied migrations are no-ops, so Run is safe to call on
// every startup.
func Run(ctx context.Context, db *sql.DB) error {
	for _, m := range registry {
		if _, err := schema.Apply(ctx, db, m.Plan); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
	}
	return nil
}
