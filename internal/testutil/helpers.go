package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/config"
	"github.com/ndewijer/Income-Clarity-Backend/internal/marketdata"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
	"github.com/ndewijer/Income-Clarity-Backend/internal/secrets"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/yahoo"
)

// NewTestConfig returns the configuration defaults used by the services in tests.
func NewTestConfig() *config.Config {
	return &config.Config{
		Market: config.MarketConfig{
			Timeout:         time.Second,
			CacheTTL:        5 * time.Minute,
			BenchmarkTicker: "SPY",
			Currency:        "USD",
		},
		Planning: config.PlanningConfig{
			HorizonYears:   100,
			ExpectedReturn: decimal.RequireFromString("0.07"),
			WithdrawalRate: decimal.RequireFromString("0.04"),
		},
		Reconcile: config.ReconcileConfig{
			Tolerance: decimal.RequireFromString("0.05"),
		},
	}
}

func NewTestUserService(t *testing.T, db *sql.DB) *service.UserService {
	t.Helper()

	return service.NewUserService(repository.NewUserRepository(db))
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewPortfolioRepository(db),
		repository.NewUserRepository(db),
	)
}

func NewTestHoldingService(t *testing.T, db *sql.DB) *service.HoldingService {
	t.Helper()

	return service.NewHoldingService(
		repository.NewHoldingRepository(db),
		repository.NewPortfolioRepository(db),
	)
}

func NewTestIncomeService(t *testing.T, db *sql.DB) *service.IncomeService {
	t.Helper()

	return service.NewIncomeService(repository.NewStore(db))
}

func NewTestExpenseService(t *testing.T, db *sql.DB) *service.ExpenseService {
	t.Helper()

	return service.NewExpenseService(
		repository.NewExpenseRepository(db),
		repository.NewUserRepository(db),
	)
}

func NewTestTaxProfileService(t *testing.T, db *sql.DB) *service.TaxProfileService {
	t.Helper()

	return service.NewTaxProfileService(
		repository.NewTaxRepository(db),
		repository.NewUserRepository(db),
	)
}

// NewTestTokenCipher returns a cipher with a fresh random key.
func NewTestTokenCipher(t *testing.T) *secrets.TokenCipher {
	t.Helper()

	key, err := secrets.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate token key: %v", err)
	}
	cipher, err := secrets.NewTokenCipher(key)
	if err != nil {
		t.Fatalf("Failed to create token cipher: %v", err)
	}
	return cipher
}

func NewTestSyncedAccountService(t *testing.T, db *sql.DB, cipher *secrets.TokenCipher) *service.SyncedAccountService {
	t.Helper()

	return service.NewSyncedAccountService(repository.NewStore(db), cipher)
}

// NewTestGateway wraps client in a gateway with an in-memory cache and a clock
// fixed at Fixed.
func NewTestGateway(t *testing.T, client yahoo.Client) *marketdata.Gateway {
	t.Helper()

	cfg := NewTestConfig()
	return marketdata.NewGateway(client, marketdata.NewMemoryCache(), cfg.Market.CacheTTL, cfg.Market.Timeout).
		WithClock(func() time.Time { return Fixed })
}

// NewTestSuperCardService builds the Super Card service over client with the
// clock fixed at Fixed.
func NewTestSuperCardService(t *testing.T, db *sql.DB, client yahoo.Client) *service.SuperCardService {
	t.Helper()

	return service.NewSuperCardService(repository.NewStore(db), NewTestGateway(t, client), NewTestConfig()).
		WithClock(func() time.Time { return Fixed })
}

func NewTestReconciliationService(t *testing.T, db *sql.DB) *service.ReconciliationService {
	t.Helper()

	return service.NewReconciliationService(repository.NewStore(db), NewTestConfig().Reconcile.Tolerance)
}

func NewTestPriceRefreshService(t *testing.T, db *sql.DB, client yahoo.Client) *service.PriceRefreshService {
	t.Helper()

	return service.NewPriceRefreshService(repository.NewHoldingRepository(db), NewTestGateway(t, client))
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, nil, map[string]bool{"supercards": true})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
