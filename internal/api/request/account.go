package request

import "github.com/shopspring/decimal"

type LinkAccountRequest struct {
	Provider          string `json:"provider"`
	ExternalAccountID string `json:"externalAccountId"`
	AccessToken       string `json:"accessToken"`
}

// SyncSnapshotRequest is one aggregator pull for a linked account.
type SyncSnapshotRequest struct {
	PortfolioID string           `json:"portfolioId"`
	Holdings    []SyncedPosition `json:"holdings"`
	Income      []SyncedIncome   `json:"income"`
}

type SyncedPosition struct {
	Ticker    string          `json:"ticker"`
	Sector    string          `json:"sector"`
	Shares    decimal.Decimal `json:"shares"`
	CostBasis decimal.Decimal `json:"costBasis"`
}

type SyncedIncome struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	ReceivedAt  string          `json:"receivedAt"`
	Description string          `json:"description"`
}

type ApplyReconciliationRequest struct {
	ManualHoldingID string `json:"manualHoldingId"`
	SyncedHoldingID string `json:"syncedHoldingId"`
	Choice          string `json:"choice"`
}
