package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// newID returns a random UUID string for new records.
func newID() string {
	return uuid.New().String()
}

// now returns the current time in UTC, truncated to microseconds so stored
// timestamps compare equal after a round trip.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// setString overwrites dst with the trimmed value of src when src is provided.
func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// setDecimal overwrites dst when src is provided.
func setDecimal(dst *decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		*dst = *src
	}
}

// nullDecimal converts an optional request value into a nullable column value.
func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
