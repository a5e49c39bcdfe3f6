package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// RecordFilters are the parsed query parameters of the income and expense listings.
type RecordFilters struct {
	Range    model.DateRange
	Category string
}

// ParseRecordFilters extracts and validates listing filters from query parameters.
//
// Validation rules:
//   - month: YYYY-MM, selects that calendar month and excludes from/to
//   - from/to: YYYY-MM-DD or RFC3339; a bare date for to includes the whole day
//   - category: optional, lower-cased
//
// Without any range parameter the current calendar month is selected.
func ParseRecordFilters(monthParam, fromParam, toParam, categoryParam string, now time.Time) (*RecordFilters, error) {
	filters := &RecordFilters{Category: strings.TrimSpace(strings.ToLower(categoryParam))}

	if monthParam != "" {
		if fromParam != "" || toParam != "" {
			return nil, fmt.Errorf("month cannot be combined with from/to")
		}
		month, err := ParseMonth(monthParam)
		if err != nil {
			return nil, err
		}
		filters.Range = model.MonthRange(month)
		return filters, nil
	}

	if fromParam == "" && toParam == "" {
		filters.Range = model.MonthRange(now)
		return filters, nil
	}

	// Parse from
	filters.Range.From = time.Unix(0, 0).UTC()
	if fromParam != "" {
		from, _, err := parseFilterTime(fromParam)
		if err != nil {
			return nil, fmt.Errorf("invalid from format: %w", err)
		}
		filters.Range.From = from
	}

	// Parse to
	filters.Range.To = now.UTC()
	if toParam != "" {
		to, dateOnly, err := parseFilterTime(toParam)
		if err != nil {
			return nil, fmt.Errorf("invalid to format: %w", err)
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filters.Range.To = to
	}

	if filters.Range.To.Before(filters.Range.From) {
		return nil, fmt.Errorf("invalid date range: to is before from")
	}

	return filters, nil
}

// ParseMonth parses a YYYY-MM month parameter.
func ParseMonth(str string) (time.Time, error) {
	t, err := time.Parse("2006-01", str)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", str)
	}
	return t, nil
}

// ParseDateTime parses a date or datetime request value into UTC.
func ParseDateTime(str string) (time.Time, error) {
	t, _, err := parseFilterTime(str)
	return t, err
}

// parseFilterTime accepts YYYY-MM-DD, RFC3339, and RFC3339 with milliseconds formats.
// dateOnly reports whether the value carried no time of day.
func parseFilterTime(str string) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse("2006-01-02", str); err == nil {
		return t, true, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
