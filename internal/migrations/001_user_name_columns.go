package migrations

import (
	"context"
	"database/sql"

	"github.com/mkarpenko/smig/internal/schema"
)

// UserNameColumnsPlan adds the first_name and last_name columns to the users
// table. Older databases stored only the Telegram username; these columns let
// the bot address people by their profile name. Both are nullable with no
// default, so existing rows read back NULL until the bot next sees the user.
var UserNameColumnsPlan = schema.Plan{
	Table: "users",
	Columns: []schema.Column{
		{Name: "first_name", Type: "VARCHAR(255)", Nullable: true},
		{Name: "last_name", Type: "VARCHAR(255)", Nullable: true},
	},
}

// MigrateUserNameColumns applies UserNameColumnsPlan.
func MigrateUserNameColumns(ctx context.Context, db *sql.DB) error {
	_, err := schema.Apply(ctx, db, UserNameColumnsPlan)
	return err
}
