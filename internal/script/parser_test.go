package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpenko/smig/internal/schema"
)

func TestParseNameMigration(t *testing.T) {
	src := `-- Add first_name and last_name to users.
-- Nullable, no default.
ALTER TABLE users ADD COLUMN first_name VARCHAR(255) NULL;
ALTER TABLE users ADD COLUMN last_name VARCHAR(255) NULL;
`
	plans, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, plans, 1)

	p := plans[0]
	assert.Equal(t, "users", p.Table)
	require.Len(t, p.Columns, 2)
	assert.Equal(t, schema.Column{Name: "first_name", Type: "VARCHAR(255)", Nullable: true}, p.Columns[0])
	assert.Equal(t, schema.Column{Name: "last_name", Type: "VARCHAR(255)", Nullable: true}, p.Columns[1])
}

func TestParseConstraints(t *testing.T) {
	src := `ALTER TABLE users ADD COLUMN flags INTEGER NOT NULL DEFAULT 0;
ALTER TABLE users ADD nickname TEXT DEFAULT 'anon -- not a comment; honest';
`
	plans, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Len(t, plans[0].Columns, 2)

	flags := plans[0].Columns[0]
	assert.False(t, flags.Nullable)
	assert.Equal(t, "0", flags.Default)

	nick := plans[0].Columns[1]
	assert.True(t, nick.Nullable)
	assert.Equal(t, `'anon -- not a comment; honest'`, nick.Default)
}

func TestParseQuotedIdentifiers(t *testing.T) {
	src := `ALTER TABLE "users" ADD COLUMN "first_name" VARCHAR (255);`
	plans, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "users", plans[0].Table)
	require.Len(t, plans[0].Columns, 1)
	assert.Equal(t, "first_name", plans[0].Columns[0].Name)
	// Detached length spec is reattached to the type.
	assert.Equal(t, "VARCHAR(255)", strings.ReplaceAll(plans[0].Columns[0].Type, " ", ""))
}

func TestParseMultipleTables(t *testing.T) {
	src := `ALTER TABLE users ADD COLUMN first_name TEXT;
ALTER TABLE messages ADD COLUMN edited INTEGER DEFAULT 0;
ALTER TABLE users ADD COLUMN last_name TEXT;
`
	plans, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, plans, 2)

	// Tables keep first-appearance order; columns keep statement order.
	assert.Equal(t, "users", plans[0].Table)
	assert.Equal(t, []string{"first_name", "last_name"}, columnNames(plans[0]))
	assert.Equal(t, "messages", plans[1].Table)
	assert.Equal(t, []string{"edited"}, columnNames(plans[1]))
}

func TestParseRejectsNonAdditive(t *testing.T) {
	cases := map[string]string{
		"create table": `CREATE TABLE users (id INTEGER PRIMARY KEY);`,
		"drop column":  `ALTER TABLE users DROP COLUMN first_name;`,
		"delete":       `DELETE FROM users;`,
		"rename":       `ALTER TABLE users RENAME TO people;`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestParseUnterminatedStatement(t *testing.T) {
	_, err := Parse(strings.NewReader(`ALTER TABLE users ADD COLUMN first_name TEXT`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not terminated")
}

func TestParseEmptyScript(t *testing.T) {
	plans, err := Parse(strings.NewReader("-- nothing here\n\n"))
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestParseErrorReportsLine(t *testing.T) {
	src := "-- header\n\nALTER TABLE users ADD COLUMN first_name TEXT;\nDROP TABLE users;\n"
	_, err := Parse(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func columnNames(p schema.Plan) []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}
