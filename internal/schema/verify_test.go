package schema

import (
	"context"
	"testing"
)

func TestVerifyMetadata(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			telegram_id INTEGER NOT NULL,
			username VARCHAR(255) DEFAULT 'anon'
		)
	`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	cols, err := Verify(ctx, db, "users")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}

	if !cols[0].PK {
		t.Error("id should be flagged as primary key")
	}
	if cols[0].CID != 0 || cols[2].CID != 2 {
		t.Errorf("columns out of declaration order: %+v", cols)
	}
	if !cols[1].NotNull {
		t.Error("telegram_id should be NOT NULL")
	}
	if !cols[2].Default.Valid || cols[2].Default.String != "'anon'" {
		t.Errorf("username default: %+v", cols[2].Default)
	}
}

func TestVerifyTableMissing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := Verify(ctx, db, "users")
	if err == nil {
		t.Fatal("expected error for missing table")
	}
	if !IsTableMissing(err) {
		t.Errorf("expected ErrTableMissing, got: %v", err)
	}
}

func TestMissingColumns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, first_name TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	missing, err := MissingColumns(ctx, db, "users", []string{"first_name", "last_name"})
	if err != nil {
		t.Fatalf("MissingColumns failed: %v", err)
	}
	if len(missing) != 1 || missing[0] != "last_name" {
		t.Errorf("expected [last_name], got %v", missing)
	}

	// Identifier comparison is case-insensitive.
	missing, err = MissingColumns(ctx, db, "users", []string{"FIRST_NAME"})
	if err != nil {
		t.Fatalf("MissingColumns failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("case-insensitive match failed: %v", missing)
	}
}
