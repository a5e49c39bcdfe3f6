package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeCategory classifies an income record.
type IncomeCategory string

const (
	IncomeCategoryJob      IncomeCategory = "job"
	IncomeCategoryDividend IncomeCategory = "dividend"
	IncomeCategoryOther    IncomeCategory = "other"
)

// Valid reports whether c is a known income category.
func (c IncomeCategory) Valid() bool {
	switch c {
	case IncomeCategoryJob, IncomeCategoryDividend, IncomeCategoryOther:
		return true
	}
	return false
}

// IncomeRecord is a single receipt of income. Dividend records may reference
// the holding that paid them.
type IncomeRecord struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Amount          decimal.Decimal `json:"amount"`
	Category        IncomeCategory  `json:"category"`
	ReceivedAt      time.Time       `json:"receivedAt"`
	Description     string          `json:"description"`
	DataSource      DataSource      `json:"dataSource"`
	HoldingID       *string         `json:"holdingId,omitempty"`
	SyncedAccountID *string         `json:"syncedAccountId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ExpenseRecord is a single expense. Recurring expenses apply to every month
// from their date onwards.
type ExpenseRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Recurring   bool            `json:"recurring"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TaxProfile drives the gross-to-net conversion. One per user.
type TaxProfile struct {
	UserID        string          `json:"userId"`
	Jurisdiction  string          `json:"jurisdiction"`
	FilingStatus  string          `json:"filingStatus"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// TaxJurisdiction is a candidate location or strategy for the tax comparison.
type TaxJurisdiction struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	DividendRate decimal.Decimal `json:"dividendRate"`
}

// Sync statuses for linked aggregator accounts.
const (
	SyncStatusPending   = "PENDING"
	SyncStatusOK        = "OK"
	SyncStatusAuthError = "AUTH_ERROR"
)

// SyncedAccount is a bank-aggregator link. It supplies SYNCED holdings and
// income but does not own them.
type SyncedAccount struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	Provider          string     `json:"provider"`
	ExternalAccountID string     `json:"externalAccountId"`
	AccessToken       string     `json:"-"`
	LastSyncAt        *time.Time `json:"lastSyncAt,omitempty"`
	SyncStatus        string     `json:"syncStatus"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Reconciliation is the persisted record of one reconcile decision,
// carrying enough state to undo it.
type Reconciliation struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Ticker          string     `json:"ticker"`
	Choice          string     `json:"choice"`
	ManualHoldingID string     `json:"manualHoldingId"`
	SyncedHoldingID string     `json:"syncedHoldingId"`
	ResultHoldingID *string    `json:"resultHoldingId,omitempty"`
	ManualSnapshot  Holding    `json:"manualSnapshot"`
	SyncedSnapshot  Holding    `json:"syncedSnapshot"`
	CreatedAt       time.Time  `json:"createdAt"`
	UndoneAt        *time.Time `json:"undoneAt,omitempty"`
}
