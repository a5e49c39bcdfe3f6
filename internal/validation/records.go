package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

// ValidateCreateIncome validates an income record.
//
// Required fields:
//   - amount: Must be positive
//   - category: Must be one of: job, dividend, other
//   - receivedAt: YYYY-MM-DD or RFC3339
//
// holdingId, when given, must be a valid UUID and is only allowed on dividends.
func ValidateCreateIncome(req request.CreateIncomeRequest) error {
	errors := make(map[string]string)

	if !req.Amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}

	category := model.IncomeCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if category == "" {
		errors["category"] = "category is required"
	} else if !category.Valid() {
		errors["category"] = fmt.Sprintf("invalid category: %s", req.Category)
	}

	if strings.TrimSpace(req.ReceivedAt) == "" {
		errors["receivedAt"] = "receivedAt is required"
	} else if _, err := request.ParseDateTime(req.ReceivedAt); err != nil {
		errors["receivedAt"] = err.Error()
	}

	if req.HoldingID != nil {
		if err := ValidateUUID(*req.HoldingID); err != nil {
			errors["holdingId"] = err.Error()
		} else if category != model.IncomeCategoryDividend {
			errors["holdingId"] = "holdingId is only allowed on dividend income"
		}
	}

	checkDescription(errors, req.Description)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateCreateExpense validates an expense record.
//
// Required fields:
//   - amount: Must be positive
//   - category: non-empty
//   - date: YYYY-MM-DD or RFC3339
func ValidateCreateExpense(req request.CreateExpenseRequest) error {
	errors := make(map[string]string)

	if !req.Amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}

	if strings.TrimSpace(req.Category) == "" {
		errors["category"] = "category is required"
	} else if len(req.Category) > 50 {
		errors["category"] = "category must be 50 characters or less"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := request.ParseDateTime(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	checkDescription(errors, req.Description)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateTaxProfile validates a tax profile. effectiveRate is a fraction in [0,1].
func ValidateTaxProfile(req request.TaxProfileRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Jurisdiction) == "" {
		errors["jurisdiction"] = "jurisdiction is required"
	} else if len(strings.TrimSpace(req.Jurisdiction)) > 10 {
		errors["jurisdiction"] = "jurisdiction must be 10 characters or less"
	}

	if len(req.FilingStatus) > 30 {
		errors["filingStatus"] = "filingStatus must be 30 characters or less"
	}

	if req.EffectiveRate.IsNegative() || req.EffectiveRate.GreaterThan(decimal.NewFromInt(1)) {
		errors["effectiveRate"] = "effectiveRate must be between 0 and 1"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
