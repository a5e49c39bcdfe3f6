package request

import "github.com/shopspring/decimal"

type CreateHoldingRequest struct {
	PortfolioID string          `json:"portfolioId"`
	Ticker      string          `json:"ticker"`
	Sector      string          `json:"sector"`
	Shares      decimal.Decimal `json:"shares"`
	CostBasis   decimal.Decimal `json:"costBasis"`
}

type UpdateHoldingRequest struct {
	PortfolioID *string          `json:"portfolioId,omitempty"`
	Ticker      *string          `json:"ticker,omitempty"`
	Sector      *string          `json:"sector,omitempty"`
	Shares      *decimal.Decimal `json:"shares,omitempty"`
	CostBasis   *decimal.Decimal `json:"costBasis,omitempty"`
}
