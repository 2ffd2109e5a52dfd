package core

import "errors"

// Domain errors. Services return these (possibly wrapped); callers
// classify them with errors.Is.
var (
	// ErrUnauthenticated means no valid identity could be resolved for
	// the request. Nothing may touch the store once this is returned.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound covers both "row does not exist" and "row exists but
	// belongs to another user". The two are deliberately
	// indistinguishable so one user can't probe another's data.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCategory means the referenced category is missing, not
	// owned by the caller, or has the wrong type for the operation.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrTypeMismatch means a transaction's type conflicts with the
	// type of its category.
	ErrTypeMismatch = errors.New("transaction type does not match category type")

	// ErrDuplicateName means a category with that name already exists
	// for the user, whether caught by pre-check or by the store's
	// unique constraint.
	ErrDuplicateName = errors.New("category name already exists")

	// ErrDuplicateBudget means a budget already exists for the same
	// category and period.
	ErrDuplicateBudget = errors.New("budget already exists for this category and period")

	// ErrInUse means a delete was blocked because other rows still
	// reference the target.
	ErrInUse = errors.New("category is referenced by transactions or budgets")

	// ErrDuplicateUser means the username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already registered")

	// Validation errors.
	ErrValidation         = errors.New("validation failed")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("type must be Income or Expense")
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrNameTooLong        = errors.New("name too long (max 100 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 255 characters)")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
