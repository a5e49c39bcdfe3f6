package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/reconcile"
)

// ValidateLinkAccount validates a synced account link request. The access
// token is required but never echoed back in error messages.
func ValidateLinkAccount(req request.LinkAccountRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Provider) == "" {
		errors["provider"] = "provider is required"
	}
	if strings.TrimSpace(req.ExternalAccountID) == "" {
		errors["externalAccountId"] = "externalAccountId is required"
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		errors["accessToken"] = "accessToken is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSyncSnapshot validates one aggregator snapshot. Positions must carry
// a valid ticker and positive shares; income rows follow the income rules.
func ValidateSyncSnapshot(req request.SyncSnapshotRequest) error {
	if err := ValidateUUID(req.PortfolioID); err != nil {
		return err
	}

	errors := make(map[string]string)

	for i, p := range req.Holdings {
		validatePosition(errors, fmt.Sprintf("holdings[%d].", i), p.Ticker, p.Shares, p.CostBasis)
	}

	for i, inc := range req.Income {
		err := ValidateCreateIncome(request.CreateIncomeRequest{
			Amount:      inc.Amount,
			Category:    inc.Category,
			ReceivedAt:  inc.ReceivedAt,
			Description: inc.Description,
		})
		var verr *Error
		if err != nil && asError(err, &verr) {
			for k, v := range verr.Fields {
				errors[fmt.Sprintf("income[%d].%s", i, k)] = v
			}
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateApplyReconciliation validates an explicit reconcile decision.
func ValidateApplyReconciliation(req request.ApplyReconciliationRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.ManualHoldingID); err != nil {
		errors["manualHoldingId"] = err.Error()
	}
	if err := ValidateUUID(req.SyncedHoldingID); err != nil {
		errors["syncedHoldingId"] = err.Error()
	}
	if req.ManualHoldingID != "" && req.ManualHoldingID == req.SyncedHoldingID {
		errors["syncedHoldingId"] = "syncedHoldingId must differ from manualHoldingId"
	}
	if _, err := reconcile.ParseChoice(req.Choice); err != nil {
		errors["choice"] = fmt.Sprintf("invalid choice: %s", req.Choice)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
