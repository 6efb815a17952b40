// Package sqlite manages connections to the SQLite database file being migrated.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tetratelabs/wazero"

	"github.com/mkarpenko/smig/internal/schema"
)

// Store wraps a connection to one SQLite database file.
type Store struct {
	db       *sql.DB
	dbPath   string
	readOnly bool
	closed   atomic.Bool
}

// Options controls how the database is opened.
type Options struct {
	// ReadOnly opens the database with mode=ro. Verification-only commands
	// use this so they can never modify the file.
	ReadOnly bool
}

// setupWASMCache configures WASM compilation caching to reduce SQLite startup
// time. The ncruces driver JIT-compiles its embedded SQLite build on first use
// (~200ms); a filesystem cache under the user cache dir brings subsequent runs
// to ~20ms. Falls back to an in-memory cache if the directory is unavailable.
func setupWASMCache() {
	var cache wazero.CompilationCache
	if userCache, err := os.UserCacheDir(); err == nil {
		dir := filepath.Join(userCache, "smig", "wasm")
		if c, err := wazero.NewCompilationCacheWithDir(dir); err == nil {
			cache = c
		}
	}
	if cache == nil {
		cache = wazero.NewCompilationCache()
	}
	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)
}

func init() {
	setupWASMCache()
}

// Open opens the database at path.
//
// For a plain file path the file must already exist: the migrator evolves an
// existing database and must not silently create an empty one when the
// operator points it at the wrong path. ":memory:" and file: URIs are passed
// through for tests and advanced use.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	var connStr string
	isInMemory := path == ":memory:" ||
		(strings.HasPrefix(path, "file:") && strings.Contains(path, "mode=memory"))

	switch {
	case path == ":memory:":
		// Shared cache so multiple pool connections see the same data.
		connStr = "file:memdb?mode=memory&cache=shared&_pragma=journal_mode(DELETE)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)"
	case strings.HasPrefix(path, "file:"):
		connStr = path
		if !strings.Contains(path, "_pragma=foreign_keys") {
			sep := "?"
			if strings.Contains(path, "?") {
				sep = "&"
			}
			connStr += sep + "_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)"
		}
	default:
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("open %s: %w: no such file", path, schema.ErrStorageUnavailable)
			}
			return nil, fmt.Errorf("open %s: %w: %v", path, schema.ErrStorageUnavailable, err)
		}
		connStr = "file:" + path + "?_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)"
		if opts.ReadOnly {
			connStr += "&mode=ro"
		}
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %v", schema.ErrStorageUnavailable, err)
	}

	// Schema migration is single-threaded and short-lived; one connection is
	// all we need. For in-memory databases this is also a correctness
	// requirement: they are isolated per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if !isInMemory && !opts.ReadOnly {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w: %v", schema.ErrStorageUnavailable, err)
	}

	absPath := path
	if !isInMemory && !strings.HasPrefix(path, "file:") {
		if absPath, err = filepath.Abs(path); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	}

	return &Store{db: db, dbPath: absPath, readOnly: opts.ReadOnly}, nil
}

// DB returns the underlying connection pool. Callers must not Close it;
// the Store owns the connection lifecycle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the absolute path to the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// ReadOnly reports whether the store was opened read-only.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// IsClosed returns true if Close has been called.
func (s *Store) IsClosed() bool {
	return s.closed.Load()
}

// Close checkpoints the WAL and closes the connection. Without the checkpoint,
// applied DDL can remain stranded in the -wal file between CLI invocations.
func (s *Store) Close() error {
	s.closed.Store(true)
	if !s.readOnly {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return s.db.Close()
}
