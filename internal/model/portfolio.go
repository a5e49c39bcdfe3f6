package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User owns every portfolio, record and profile in the system.
// The FIRE settings are optional; unset values fall back to derived defaults.
type User struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Email             string              `json:"email"`
	FireTarget        decimal.NullDecimal `json:"fireTarget"`
	ExpectedReturn    decimal.NullDecimal `json:"expectedReturn"`
	MonthlyInvestment decimal.NullDecimal `json:"monthlyInvestment"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// Portfolio groups holdings belonging to one user.
type Portfolio struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
