package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkarpenko/smig/internal/schema"
)

func TestOpenMissingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nope.db")

	_, err := Open(ctx, path, Options{})
	if err == nil {
		t.Fatal("expected error for missing database file")
	}
	if !schema.IsStorageUnavailable(err) {
		t.Errorf("expected ErrStorageUnavailable, got: %v", err)
	}

	// Opening must not have created the file.
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("open should not create a missing database file")
	}
}

func TestOpenInMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:", Options{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := store.DB().Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
}

func TestOpenFileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bot.db")

	// An empty file is a valid fresh SQLite database.
	f, err := os.Create(path) // #nosec G304 - temp dir path
	if err != nil {
		t.Fatalf("failed to create database file: %v", err)
	}
	_ = f.Close()

	store, err := Open(ctx, path, Options{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	var mode string
	if err := store.DB().QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("failed to read journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected WAL journal mode, got %q", mode)
	}

	if _, err := store.DB().Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
	if !store.IsClosed() {
		t.Error("IsClosed should report true after Close")
	}

	// The checkpoint on Close must leave the schema visible to a fresh open.
	ro, err := Open(ctx, path, Options{ReadOnly: true})
	if err != nil {
		t.Fatalf("failed to reopen read-only: %v", err)
	}
	defer func() { _ = ro.Close() }()

	exists, err := schema.TableExists(ctx, ro.DB(), "users")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if !exists {
		t.Error("users table not visible after close and reopen")
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bot.db")

	store, err := Open(ctx, "file:"+path, Options{})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if _, err := store.DB().Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	ro, err := Open(ctx, path, Options{ReadOnly: true})
	if err != nil {
		t.Fatalf("failed to open read-only: %v", err)
	}
	defer func() { _ = ro.Close() }()
	if !ro.ReadOnly() {
		t.Error("ReadOnly should report true")
	}

	plan := schema.Plan{
		Table:   "users",
		Columns: []schema.Column{{Name: "first_name", Type: "VARCHAR(255)", Nullable: true}},
	}
	if _, err := schema.Apply(ctx, ro.DB(), plan); err == nil {
		t.Error("Apply should fail on a read-only database")
	}
}
