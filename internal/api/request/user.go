package request

import "github.com/shopspring/decimal"

type CreateUserRequest struct {
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	FireTarget        *decimal.Decimal `json:"fireTarget,omitempty"`
	ExpectedReturn    *decimal.Decimal `json:"expectedReturn,omitempty"`
	MonthlyInvestment *decimal.Decimal `json:"monthlyInvestment,omitempty"`
}

type UpdateUserRequest struct {
	Name              *string          `json:"name,omitempty"`
	Email             *string          `json:"email,omitempty"`
	FireTarget        *decimal.Decimal `json:"fireTarget,omitempty"`
	ExpectedReturn    *decimal.Decimal `json:"expectedReturn,omitempty"`
	MonthlyInvestment *decimal.Decimal `json:"monthlyInvestment,omitempty"`
}

type CreatePortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdatePortfolioRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
