package validation

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
)

// ValidateCreateUser validates a user creation request.
//
// Required fields:
//   - name: non-empty, 100 characters or less
//   - email: a valid address
//
// Optional FIRE settings must be non-negative; expectedReturn is a fraction below 1.
func ValidateCreateUser(req request.CreateUserRequest) error {
	errors := make(map[string]string)

	checkName(errors, "name", req.Name)

	if strings.TrimSpace(req.Email) == "" {
		errors["email"] = "email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errors["email"] = "email is not a valid address"
	}

	validateFireSettings(errors, req.FireTarget, req.ExpectedReturn, req.MonthlyInvestment)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateUser validates a user update request. Only provided fields are checked.
func ValidateUpdateUser(req request.UpdateUserRequest) error {
	errors := make(map[string]string)

	if req.Name != nil {
		checkName(errors, "name", *req.Name)
	}

	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			errors["email"] = "email is not a valid address"
		}
	}

	validateFireSettings(errors, req.FireTarget, req.ExpectedReturn, req.MonthlyInvestment)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func validateFireSettings(errors map[string]string, target, expectedReturn, monthly *decimal.Decimal) {
	if target != nil && target.IsNegative() {
		errors["fireTarget"] = "fireTarget cannot be negative"
	}
	if expectedReturn != nil && (expectedReturn.IsNegative() || expectedReturn.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		errors["expectedReturn"] = "expectedReturn must be a fraction between 0 and 1"
	}
	if monthly != nil && monthly.IsNegative() {
		errors["monthlyInvestment"] = "monthlyInvestment cannot be negative"
	}
}
