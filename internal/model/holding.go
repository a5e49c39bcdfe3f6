package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataSource tags the provenance of a holding or income record.
type DataSource string

const (
	DataSourceManual DataSource = "MANUAL"
	DataSourceSynced DataSource = "SYNCED"
	DataSourceMerged DataSource = "MERGED"
)

// Valid reports whether d is one of the known provenance tags.
func (d DataSource) Valid() bool {
	switch d {
	case DataSourceManual, DataSourceSynced, DataSourceMerged:
		return true
	}
	return false
}

// Holding is a position in one ticker inside one portfolio.
//
// CostBasis is the total amount paid for the position, not a per-share figure.
// CurrentPrice and PreviousClose stay null until the first price refresh.
// A non-nil DeletedAt marks a soft-deleted record retained for reconciliation undo.
type Holding struct {
	ID               string              `json:"id"`
	UserID           string              `json:"userId"`
	PortfolioID      string              `json:"portfolioId"`
	Ticker           string              `json:"ticker"`
	Sector           string              `json:"sector"`
	Shares           decimal.Decimal     `json:"shares"`
	CostBasis        decimal.Decimal     `json:"costBasis"`
	CurrentPrice     decimal.NullDecimal `json:"currentPrice"`
	PreviousClose    decimal.NullDecimal `json:"previousClose"`
	PriceRefreshedAt *time.Time          `json:"priceRefreshedAt,omitempty"`
	DataSource       DataSource          `json:"dataSource"`
	SyncedAccountID  *string             `json:"syncedAccountId,omitempty"`
	DeletedAt        *time.Time          `json:"deletedAt,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`

	// PriceStale is set when CurrentPrice came from a fallback rather than a fresh quote.
	// It is never persisted.
	PriceStale bool `json:"priceStale,omitempty"`
}

// IsDeleted reports whether the holding has been soft-deleted.
func (h Holding) IsDeleted() bool {
	return h.DeletedAt != nil
}

// MarketValue returns shares × current price, or false when no price is known.
func (h Holding) MarketValue() (decimal.Decimal, bool) {
	if !h.CurrentPrice.Valid {
		return decimal.Zero, false
	}
	return h.Shares.Mul(h.CurrentPrice.Decimal), true
}

// AverageCost returns the per-share cost implied by the stored total cost basis.
func (h Holding) AverageCost() decimal.Decimal {
	if h.Shares.IsZero() {
		return decimal.Zero
	}
	return h.CostBasis.Div(h.Shares)
}
