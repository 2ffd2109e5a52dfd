package core

// TransactionFilter narrows a transaction listing. Zero values mean
// "no constraint". When StartDate or EndDate is set the explicit range
// wins and Month/Year are ignored.
type TransactionFilter struct {
	Search     string
	CategoryID int64
	Type       EntryType
	StartDate  Date
	EndDate    Date
	Month      int
	Year       int
}

// DateRange resolves the filter to a concrete start/end pair. ok is
// false when the filter constrains no dates at all.
func (f TransactionFilter) DateRange() (start, end Date, ok bool) {
	if !f.StartDate.IsZero() || !f.EndDate.IsZero() {
		return f.StartDate, f.EndDate, true
	}
	if f.Month != 0 && f.Year != 0 {
		s, e := MonthRange(f.Month, f.Year)
		return Date{Time: s}, NewDate(e.Year(), int(e.Month()), e.Day()), true
	}
	return Date{}, Date{}, false
}

// Validate rejects partially specified or malformed filters.
func (f TransactionFilter) Validate() error {
	if f.Type != "" && !f.Type.Valid() {
		return ErrInvalidType
	}
	if f.Month != 0 || f.Year != 0 {
		if f.Year == 0 {
			return ErrInvalidDate
		}
		if err := ValidateMonth(f.Month); err != nil {
			return err
		}
	}
	return nil
}
