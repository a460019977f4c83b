package db

import (
	"strings"

	"github.com/teranos/eavto/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed database.
// This typically occurs during server shutdown when the connection closes
// before a websocket handler or the ontology watcher has finished.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is closed.
// Raw driver errors carry only a message, so those are matched by text.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// IsConstraintViolation reports whether err came from a CHECK, trigger or
// foreign key rejection inside SQLite.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY") ||
		strings.Contains(msg, "immutable") ||
		strings.Contains(msg, "never deleted")
}
