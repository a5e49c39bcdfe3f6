package validation

import (
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/marketdata"
)

// ValidateCreateHolding validates a manual holding creation request.
//
// Required fields:
//   - portfolioId: Must be a valid UUID
//   - ticker: 1-15 characters of A-Z, 0-9 and . - ^ =
//   - shares: Must be positive
//   - costBasis: Must not be negative (total amount paid, not per share)
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateHolding(req request.CreateHoldingRequest) error {
	if err := ValidateUUID(req.PortfolioID); err != nil {
		return err
	}

	errors := make(map[string]string)

	validatePosition(errors, "", req.Ticker, req.Shares, req.CostBasis)

	if len(req.Sector) > 100 {
		errors["sector"] = "sector must be 100 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateHolding validates a holding update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateHolding(req request.UpdateHoldingRequest) error {
	if req.PortfolioID != nil {
		if err := ValidateUUID(*req.PortfolioID); err != nil {
			return err
		}
	}

	errors := make(map[string]string)

	if req.Ticker != nil {
		if _, err := marketdata.NormalizeTicker(*req.Ticker); err != nil {
			errors["ticker"] = err.Error()
		}
	}

	if req.Sector != nil && len(*req.Sector) > 100 {
		errors["sector"] = "sector must be 100 characters or less"
	}

	if req.Shares != nil && !req.Shares.IsPositive() {
		errors["shares"] = "shares must be positive"
	}

	if req.CostBasis != nil && req.CostBasis.IsNegative() {
		errors["costBasis"] = "costBasis cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
