package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// parseYearMonth extracts year and month from query parameters, defaulting
// to the current calendar month. An out-of-range month is an error rather
// than a silent correction.
func parseYearMonth(r *http.Request) (int, time.Month, error) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}

	return year, time.Month(month), nil
}

// parseUserID reads the user_id query parameter. Zero means "not given",
// which some endpoints accept (global categories) and others reject.
func parseUserID(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid user_id %q", v)
	}
	return id, nil
}

// parseAmountCents accepts the amount as either a JSON number or a decimal
// string, so "12.34", "12,34" and 12.34 all land on the same cents value.
func parseAmountCents(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		return 0, core.ErrInvalidAmount
	}
	return core.ParseDecimalToCents(s)
}

// pathID extracts the numeric trailing segment of a path like /categories/42.
func pathID(path, prefix string) (int64, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, fmt.Errorf("invalid path %q", path)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", rest)
	}
	return id, nil
}

// sanitizeInput trims whitespace and strips control characters from
// free-form text fields.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
