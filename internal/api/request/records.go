package request

import "github.com/shopspring/decimal"

type CreateIncomeRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	ReceivedAt  string          `json:"receivedAt"`
	Description string          `json:"description"`
	HoldingID   *string         `json:"holdingId,omitempty"`
}

type CreateExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Recurring   bool            `json:"recurring"`
	Description string          `json:"description"`
}

type TaxProfileRequest struct {
	Jurisdiction  string          `json:"jurisdiction"`
	FilingStatus  string          `json:"filingStatus"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
}
