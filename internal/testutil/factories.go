package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
)

// Fixed is the reference time used by builders, truncated to the second so
// stored timestamps compare equal after a round trip.
var Fixed = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().Build(t, db)
//
//	user := testutil.NewUser().
//	    WithName("Ada").
//	    WithFireTarget("1000000").
//	    Build(t, db)
type UserBuilder struct {
	user model.User
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	id := MakeID()
	return &UserBuilder{user: model.User{
		ID:        id,
		Name:      "Test User",
		Email:     "user-" + id[:8] + "@example.com",
		CreatedAt: Fixed,
		UpdatedAt: Fixed,
	}}
}

// WithID sets a custom ID.
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.user.ID = id
	return b
}

// WithName sets a custom name.
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

// WithFireTarget sets the FIRE target amount.
func (b *UserBuilder) WithFireTarget(amount string) *UserBuilder {
	b.user.FireTarget = decimal.NewNullDecimal(dec(amount))
	return b
}

// WithExpectedReturn sets the annual expected return, e.g. "0.07".
func (b *UserBuilder) WithExpectedReturn(rate string) *UserBuilder {
	b.user.ExpectedReturn = decimal.NewNullDecimal(dec(rate))
	return b
}

// WithMonthlyInvestment sets the planned monthly contribution.
func (b *UserBuilder) WithMonthlyInvestment(amount string) *UserBuilder {
	b.user.MonthlyInvestment = decimal.NewNullDecimal(dec(amount))
	return b
}

// Build creates the user in the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	if err := repository.NewUserRepository(db).InsertUser(context.Background(), &b.user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return b.user
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	portfolio := testutil.NewPortfolio(user.ID).Build(t, db)
//
//	portfolio := testutil.NewPortfolio(user.ID).
//	    WithName("Custom Portfolio").
//	    WithDescription("My description").
//	    Build(t, db)
type PortfolioBuilder struct {
	portfolio model.Portfolio
}

// NewPortfolio creates a PortfolioBuilder owned by userID with sensible defaults.
func NewPortfolio(userID string) *PortfolioBuilder {
	return &PortfolioBuilder{portfolio: model.Portfolio{
		ID:          MakeID(),
		UserID:      userID,
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
		CreatedAt:   Fixed,
	}}
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.portfolio.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.portfolio.Description = desc
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	if err := repository.NewPortfolioRepository(db).InsertPortfolio(context.Background(), &b.portfolio); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	return b.portfolio
}

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	holding := testutil.NewHolding(user.ID, portfolio.ID, "SCHD").
//	    WithShares("100").
//	    WithCostBasis("8500").
//	    WithPrice("90").
//	    Build(t, db)
type HoldingBuilder struct {
	holding model.Holding
}

// NewHolding creates a manual HoldingBuilder of 10 shares costing 1000 in total.
func NewHolding(userID, portfolioID, ticker string) *HoldingBuilder {
	return &HoldingBuilder{holding: model.Holding{
		ID:          MakeID(),
		UserID:      userID,
		PortfolioID: portfolioID,
		Ticker:      ticker,
		Shares:      dec("10"),
		CostBasis:   dec("1000"),
		DataSource:  model.DataSourceManual,
		CreatedAt:   Fixed,
		UpdatedAt:   Fixed,
	}}
}

// WithShares sets the share count.
func (b *HoldingBuilder) WithShares(shares string) *HoldingBuilder {
	b.holding.Shares = dec(shares)
	return b
}

// WithCostBasis sets the total cost basis.
func (b *HoldingBuilder) WithCostBasis(cost string) *HoldingBuilder {
	b.holding.CostBasis = dec(cost)
	return b
}

// WithSector sets the sector.
func (b *HoldingBuilder) WithSector(sector string) *HoldingBuilder {
	b.holding.Sector = sector
	return b
}

// WithPrice sets the persisted current price and its refresh time.
func (b *HoldingBuilder) WithPrice(price string) *HoldingBuilder {
	at := Fixed
	b.holding.CurrentPrice = decimal.NewNullDecimal(dec(price))
	b.holding.PriceRefreshedAt = &at
	return b
}

// WithPreviousClose sets the persisted previous close.
func (b *HoldingBuilder) WithPreviousClose(price string) *HoldingBuilder {
	b.holding.PreviousClose = decimal.NewNullDecimal(dec(price))
	return b
}

// Synced tags the holding as imported from accountID.
func (b *HoldingBuilder) Synced(accountID string) *HoldingBuilder {
	b.holding.DataSource = model.DataSourceSynced
	b.holding.SyncedAccountID = &accountID
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	if err := repository.NewHoldingRepository(db).InsertHolding(context.Background(), &b.holding); err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}
	return b.holding
}

// IncomeBuilder provides a fluent interface for creating test income records.
type IncomeBuilder struct {
	income model.IncomeRecord
}

// NewIncome creates a manual IncomeBuilder received at the reference time.
func NewIncome(userID string, category model.IncomeCategory, amount string) *IncomeBuilder {
	return &IncomeBuilder{income: model.IncomeRecord{
		ID:         MakeID(),
		UserID:     userID,
		Amount:     dec(amount),
		Category:   category,
		ReceivedAt: Fixed,
		DataSource: model.DataSourceManual,
		CreatedAt:  Fixed,
	}}
}

// ReceivedAt sets the receipt time.
func (b *IncomeBuilder) ReceivedAt(at time.Time) *IncomeBuilder {
	b.income.ReceivedAt = at
	return b
}

// Build creates the income record in the database and returns it.
func (b *IncomeBuilder) Build(t *testing.T, db *sql.DB) model.IncomeRecord {
	t.Helper()

	if err := repository.NewIncomeRepository(db).InsertIncome(context.Background(), &b.income); err != nil {
		t.Fatalf("Failed to create test income: %v", err)
	}
	return b.income
}

// ExpenseBuilder provides a fluent interface for creating test expense records.
type ExpenseBuilder struct {
	expense model.ExpenseRecord
}

// NewExpense creates a one-off ExpenseBuilder dated at the reference day.
func NewExpense(userID, category, amount string) *ExpenseBuilder {
	return &ExpenseBuilder{expense: model.ExpenseRecord{
		ID:        MakeID(),
		UserID:    userID,
		Amount:    dec(amount),
		Category:  category,
		Date:      time.Date(Fixed.Year(), Fixed.Month(), Fixed.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt: Fixed,
	}}
}

// On sets the expense date.
func (b *ExpenseBuilder) On(date time.Time) *ExpenseBuilder {
	b.expense.Date = date
	return b
}

// Recurring marks the expense as repeating every month from its date.
func (b *ExpenseBuilder) Recurring() *ExpenseBuilder {
	b.expense.Recurring = true
	return b
}

// Build creates the expense record in the database and returns it.
func (b *ExpenseBuilder) Build(t *testing.T, db *sql.DB) model.ExpenseRecord {
	t.Helper()

	if err := repository.NewExpenseRepository(db).InsertExpense(context.Background(), &b.expense); err != nil {
		t.Fatalf("Failed to create test expense: %v", err)
	}
	return b.expense
}

// CreateTaxProfile stores a tax profile for userID.
//
// Example usage:
//
//	testutil.CreateTaxProfile(t, db, user.ID, "CA", "0.333")
func CreateTaxProfile(t *testing.T, db *sql.DB, userID, jurisdiction, rate string) model.TaxProfile {
	t.Helper()

	p := model.TaxProfile{
		UserID:        userID,
		Jurisdiction:  jurisdiction,
		FilingStatus:  "single",
		EffectiveRate: dec(rate),
		UpdatedAt:     Fixed,
	}
	if err := repository.NewTaxRepository(db).UpsertTaxProfile(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create test tax profile: %v", err)
	}
	return p
}

// CreateSyncedAccount links an aggregator account with an opaque token.
func CreateSyncedAccount(t *testing.T, db *sql.DB, userID, token string) model.SyncedAccount {
	t.Helper()

	a := model.SyncedAccount{
		ID:                MakeID(),
		UserID:            userID,
		Provider:          "plaid",
		ExternalAccountID: "ext-" + randomAlphanumeric(8),
		AccessToken:       token,
		SyncStatus:        model.SyncStatusPending,
		CreatedAt:         Fixed,
	}
	if err := repository.NewSyncedAccountRepository(db).InsertSyncedAccount(context.Background(), &a); err != nil {
		t.Fatalf("Failed to create test synced account: %v", err)
	}
	return a
}
