package httputil

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	dErrors "coinquest/pkg/domain-errors"
	pstrings "coinquest/pkg/platform/strings"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// QueryString returns the trimmed value of query parameter name.
func QueryString(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryInt parses an optional integer query parameter. Absent or blank
// parameters yield nil.
func QueryInt(r *http.Request, name string) (*int, error) {
	v := QueryString(r, name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, name+" must be an integer")
	}
	return &n, nil
}

// QueryIntDefault is QueryInt with a fallback for absent parameters.
func QueryIntDefault(r *http.Request, name string, def int) (int, error) {
	n, err := QueryInt(r, name)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return def, nil
	}
	return *n, nil
}

// QueryFloat parses an optional decimal query parameter.
func QueryFloat(r *http.Request, name string) (*float64, error) {
	v := QueryString(r, name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, name+" must be a number")
	}
	return &f, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	v := QueryString(r, name)
	if v == "" {
		return nil, nil
	}
	t, err := ParseDate(v)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, name+" must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

// QueryList splits a comma-separated query parameter, dropping empty items.
func QueryList(r *http.Request, name string) []string {
	return pstrings.SplitList(QueryString(r, name))
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the UTC
// calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return time.Time{}, err
		}
		t = ts.UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
