package storage

import (
	"database/sql"
	"errors"
	"strings"

	"fintrack/internal/core"
)

// mapErr translates driver errors into the domain sentinels callers
// match on with errors.Is. SQLite reports constraint violations only
// through the error text, so the mapping keys on the constrained table.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "categories."):
			return core.ErrDuplicateName
		case strings.Contains(msg, "budgets."):
			return core.ErrDuplicateBudget
		case strings.Contains(msg, "users."):
			return core.ErrDuplicateUser
		}
	}
	return err
}
