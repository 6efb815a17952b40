package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the migration failure modes.
var (
	// ErrTableMissing indicates the target table does not exist. Fatal; the
	// run aborts without attempting further columns.
	ErrTableMissing = errors.New("table missing")

	// ErrColumnExists indicates an unguarded ALTER was replayed against a
	// column that already exists. The guarded Apply path never returns this;
	// it converts the condition to a skip.
	ErrColumnExists = errors.New("column already exists")

	// ErrStorageUnavailable indicates the database file is missing, locked,
	// or unreadable. Fatal; reported with the underlying driver error.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// wrapDBError wraps a driver error with operation context and maps the
// SQLite error text onto the sentinel taxonomy. SQLite reports both
// conditions as generic SQLITE_ERROR, so the message is the only signal.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("%s: %w: %v", op, ErrTableMissing, err)
	case strings.Contains(msg, "duplicate column name"):
		return fmt.Errorf("%s: %w: %v", op, ErrColumnExists, err)
	case strings.Contains(msg, "unable to open database"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "attempt to write a readonly database"):
		return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsTableMissing checks if an error is or wraps ErrTableMissing.
func IsTableMissing(err error) bool {
	return errors.Is(err, ErrTableMissing)
}

// IsStorageUnavailable checks if an error is or wraps ErrStorageUnavailable.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
