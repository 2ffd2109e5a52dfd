package core

import (
	"strings"
	"time"
)

const (
	Income  EntryType = "Income"
	Expense EntryType = "Expense"
)

type (
	// EntryType classifies categories and transactions as Income or
	// Expense. A transaction's type must match its category's type at
	// write time.
	EntryType string

	// Date is a calendar date. The time of day carries no meaning; all
	// dates are normalized to midnight UTC.
	Date struct {
		time.Time
	}

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	Category struct {
		ID     int64
		UserID int64
		Name   string
		Type   EntryType
	}

	Transaction struct {
		ID          int64
		UserID      int64
		CategoryID  int64
		Amount      Money
		Type        EntryType
		Description string
		Date        Date
	}

	// Budget caps spending for one Expense category in one calendar
	// month. Category, month and year are fixed at creation; only the
	// amount may change afterwards.
	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     Money
		Month      int // 1-12
		Year       int
	}
)

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" or a full RFC 3339 timestamp, keeping
// only the calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the calendar month, 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// In reports whether the date falls inside the calendar month
// month/year. This is calendar membership, not a rolling window.
func (d Date) In(month, year int) bool {
	return d.Year() == year && d.Month() == month
}

// MonthRange returns the closed interval covering one calendar month:
// start-of-day on the first and end-of-day on the last day.
func MonthRange(month, year int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrNameTooLong
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 255 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return ValidateMonth(b.Month)
}
