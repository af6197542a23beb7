package db

import (
	"github.com/mattn/go-sqlite3"

	"github.com/teranos/whereabouts/errors"
)

// IsUniqueViolation reports whether err is a SQLite unique-constraint
// violation. The resolver chain relies on this to turn a lost
// insert race into a re-select of the winning row instead of a failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
