package validation

import (
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
)

// ValidateCreatePortfolio checks a new portfolio. A portfolio only groups
// holdings, manual or synced, so its name is the one required field.
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)
	checkName(errors, "name", req.Name)
	checkDescription(errors, req.Description)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdatePortfolio checks the provided fields of a portfolio update.
// An empty description clears it; an empty name is rejected.
func ValidateUpdatePortfolio(req request.UpdatePortfolioRequest) error {
	errors := make(map[string]string)
	if req.Name != nil {
		checkName(errors, "name", *req.Name)
	}
	if req.Description != nil {
		checkDescription(errors, *req.Description)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
