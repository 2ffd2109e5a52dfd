package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// decodeJSON decodes a request body, rejecting unknown fields so typos
// surface as 400s instead of silently ignored input.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", core.ErrValidation, err.Error())
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", core.ErrValidation)
	}
	return id, nil
}

// queryInt returns the named query parameter as an int, 0 when absent.
func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", core.ErrValidation, name)
	}
	return n, nil
}

// requireMonthYear parses the mandatory month and year parameters.
func requireMonthYear(r *http.Request) (month, year int, err error) {
	month, err = queryInt(r, "month")
	if err != nil {
		return 0, 0, err
	}
	year, err = queryInt(r, "year")
	if err != nil {
		return 0, 0, err
	}
	if month == 0 || year == 0 {
		return 0, 0, fmt.Errorf("%w: month and year are required", core.ErrValidation)
	}
	if err := core.ValidateMonth(month); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// parseAmount converts a decimal string from the wire into cents.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
