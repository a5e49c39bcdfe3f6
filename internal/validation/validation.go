// Package validation checks request payloads before they reach the services.
// Field problems are collected into an Error so a form can show all of them at once.
package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/marketdata"
)

// ErrInvalidUUID is shared with apperrors so handlers can map it without
// knowing where it came from.
var ErrInvalidUUID = apperrors.ErrInvalidUUID

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// validatePosition checks the fields shared by manual holdings and synced
// positions. prefix is prepended to field names, e.g. "holdings[2].".
func validatePosition(errors map[string]string, prefix, ticker string, shares, costBasis decimal.Decimal) {
	if strings.TrimSpace(ticker) == "" {
		errors[prefix+"ticker"] = "ticker is required"
	} else if _, err := marketdata.NormalizeTicker(ticker); err != nil {
		errors[prefix+"ticker"] = err.Error()
	}

	if !shares.IsPositive() {
		errors[prefix+"shares"] = "shares must be positive"
	}

	if costBasis.IsNegative() {
		errors[prefix+"costBasis"] = "costBasis cannot be negative"
	}
}
