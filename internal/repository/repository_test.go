package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/repository"
	"github.com/ndewijer/Income-Clarity-Backend/internal/testutil"
)

func TestHoldingRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("holdings are scoped by user and portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewHoldingRepository(db)

		alice := testutil.NewUser().Build(t, db)
		bob := testutil.NewUser().Build(t, db)
		pf1 := testutil.NewPortfolio(alice.ID).Build(t, db)
		pf2 := testutil.NewPortfolio(alice.ID).Build(t, db)
		bobPf := testutil.NewPortfolio(bob.ID).Build(t, db)

		testutil.NewHolding(alice.ID, pf1.ID, "VTI").Build(t, db)
		testutil.NewHolding(alice.ID, pf2.ID, "SCHD").Build(t, db)
		testutil.NewHolding(bob.ID, bobPf.ID, "AAPL").Build(t, db)

		all, err := repo.GetHoldings(ctx, alice.ID, "")
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("Expected 2 holdings, got %d", len(all))
		}
		if all[0].Ticker != "SCHD" || all[1].Ticker != "VTI" {
			t.Errorf("Expected holdings ordered by ticker, got %s, %s", all[0].Ticker, all[1].Ticker)
		}

		one, err := repo.GetHoldings(ctx, alice.ID, pf1.ID)
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(one) != 1 || one[0].Ticker != "VTI" {
			t.Errorf("Expected only VTI in portfolio, got %+v", one)
		}

		_, err = repo.GetHolding(ctx, bob.ID, all[0].ID)
		if !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound for another user's holding, got %v", err)
		}
	})

	t.Run("decimals round trip exactly", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewHoldingRepository(db)
		user := testutil.NewUser().Build(t, db)
		pf := testutil.NewPortfolio(user.ID).Build(t, db)

		h := testutil.NewHolding(user.ID, pf.ID, "SCHD").
			WithShares("100.123456").WithCostBasis("8500.01").WithPrice("84.9999").
			Build(t, db)

		got, err := repo.GetHolding(ctx, user.ID, h.ID)
		if err != nil {
			t.Fatalf("GetHolding() returned unexpected error: %v", err)
		}
		if !got.Shares.Equal(h.Shares) || !got.CostBasis.Equal(h.CostBasis) {
			t.Errorf("Expected %s/%s, got %s/%s", h.Shares, h.CostBasis, got.Shares, got.CostBasis)
		}
		if !got.CurrentPrice.Valid || !got.CurrentPrice.Decimal.Equal(h.CurrentPrice.Decimal) {
			t.Errorf("Expected price %s, got %v", h.CurrentPrice.Decimal, got.CurrentPrice)
		}
		if got.PreviousClose.Valid {
			t.Error("Expected previous close to stay null")
		}
		if !got.UpdatedAt.Equal(h.UpdatedAt) {
			t.Errorf("Expected updatedAt %s, got %s", h.UpdatedAt, got.UpdatedAt)
		}
	})

	t.Run("soft deleted holdings are hidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewHoldingRepository(db)
		user := testutil.NewUser().Build(t, db)
		pf := testutil.NewPortfolio(user.ID).Build(t, db)
		h := testutil.NewHolding(user.ID, pf.ID, "VTI").Build(t, db)

		if err := repo.SoftDeleteHolding(ctx, user.ID, h.ID, testutil.Fixed); err != nil {
			t.Fatalf("SoftDeleteHolding() returned unexpected error: %v", err)
		}
		if err := repo.SoftDeleteHolding(ctx, user.ID, h.ID, testutil.Fixed); !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound on second delete, got %v", err)
		}

		live, _ := repo.GetHoldings(ctx, user.ID, "")
		if len(live) != 0 {
			t.Errorf("Expected no live holdings, got %d", len(live))
		}
		testutil.AssertRowCount(t, db, "holding", 1)
	})

	t.Run("price refresh updates every live holding of the ticker", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewHoldingRepository(db)
		a := testutil.NewUser().Build(t, db)
		b := testutil.NewUser().Build(t, db)
		h1 := testutil.NewHolding(a.ID, testutil.NewPortfolio(a.ID).Build(t, db).ID, "VTI").Build(t, db)
		testutil.NewHolding(b.ID, testutil.NewPortfolio(b.ID).Build(t, db).ID, "VTI").Build(t, db)
		testutil.NewHolding(b.ID, testutil.NewPortfolio(b.ID).Build(t, db).ID, "SCHD").Build(t, db)

		tickers, err := repo.GetTrackedTickers(ctx)
		if err != nil {
			t.Fatalf("GetTrackedTickers() returned unexpected error: %v", err)
		}
		if len(tickers) != 2 || tickers[0] != "SCHD" || tickers[1] != "VTI" {
			t.Errorf("Expected [SCHD VTI], got %v", tickers)
		}

		at := testutil.Fixed.Add(time.Hour)
		n, err := repo.UpdatePricesByTicker(ctx, "VTI",
			decimal.NewNullDecimal(decimal.RequireFromString("251.5")),
			decimal.NewNullDecimal(decimal.RequireFromString("249")), at)
		if err != nil {
			t.Fatalf("UpdatePricesByTicker() returned unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 rows updated, got %d", n)
		}

		got, _ := repo.GetHolding(ctx, a.ID, h1.ID)
		if !got.CurrentPrice.Decimal.Equal(decimal.RequireFromString("251.5")) {
			t.Errorf("Expected price 251.5, got %s", got.CurrentPrice.Decimal)
		}
		if got.PriceRefreshedAt == nil || !got.PriceRefreshedAt.Equal(at) {
			t.Errorf("Expected priceRefreshedAt %s, got %v", at, got.PriceRefreshedAt)
		}
		if !got.UpdatedAt.Equal(h1.UpdatedAt) {
			t.Error("Expected price refresh to leave updatedAt alone")
		}
	})
}

func TestIncomeAndExpenseRanges(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	store := repository.NewStore(db)
	user := testutil.NewUser().Build(t, db)
	march := model.MonthRange(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	testutil.NewIncome(user.ID, model.IncomeCategoryJob, "100").ReceivedAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)).Build(t, db)
	testutil.NewIncome(user.ID, model.IncomeCategoryDividend, "20.5").ReceivedAt(time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)).Build(t, db)
	testutil.NewIncome(user.ID, model.IncomeCategoryJob, "999").ReceivedAt(time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)).Build(t, db)
	testutil.NewIncome(user.ID, model.IncomeCategoryJob, "999").ReceivedAt(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)).Build(t, db)

	testutil.NewExpense(user.ID, "rent", "1500").On(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)).Recurring().Build(t, db)
	testutil.NewExpense(user.ID, "gym", "50").On(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)).Recurring().Build(t, db)
	testutil.NewExpense(user.ID, "travel", "800").On(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)).Build(t, db)
	testutil.NewExpense(user.ID, "food", "70").On(time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC)).Build(t, db)

	income, err := store.GetIncome(ctx, user.ID, march)
	if err != nil {
		t.Fatalf("GetIncome() returned unexpected error: %v", err)
	}
	if len(income) != 2 {
		t.Fatalf("Expected 2 income records in March, got %d", len(income))
	}
	if !income[1].Amount.Equal(decimal.RequireFromString("20.5")) {
		t.Errorf("Expected last record amount 20.5, got %s", income[1].Amount)
	}

	expenses, err := store.GetExpenses(ctx, user.ID, march)
	if err != nil {
		t.Fatalf("GetExpenses() returned unexpected error: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("Expected rent and travel, got %d expenses", len(expenses))
	}
	if expenses[0].Category != "rent" || !expenses[0].Recurring {
		t.Errorf("Expected recurring rent first, got %+v", expenses[0])
	}
	if expenses[1].Category != "travel" {
		t.Errorf("Expected travel second, got %s", expenses[1].Category)
	}
}

func TestTaxRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	store := repository.NewStore(db)
	user := testutil.NewUser().Build(t, db)

	profile, err := store.GetTaxProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetTaxProfile() returned unexpected error: %v", err)
	}
	if profile != nil {
		t.Fatalf("Expected nil profile before configuration, got %+v", profile)
	}

	testutil.CreateTaxProfile(t, db, user.ID, "CA", "0.333")
	testutil.CreateTaxProfile(t, db, user.ID, "TX", "0.15")

	profile, err = store.GetTaxProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetTaxProfile() returned unexpected error: %v", err)
	}
	if profile.Jurisdiction != "TX" || !profile.EffectiveRate.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("Expected upserted TX profile, got %+v", profile)
	}

	jurisdictions, err := store.GetJurisdictions(ctx)
	if err != nil {
		t.Fatalf("GetJurisdictions() returned unexpected error: %v", err)
	}
	if len(jurisdictions) != 10 {
		t.Errorf("Expected 10 seeded jurisdictions, got %d", len(jurisdictions))
	}

	_, err = store.Tax.GetJurisdiction(ctx, "ZZ")
	if !errors.Is(err, apperrors.ErrJurisdictionNotFound) {
		t.Errorf("Expected ErrJurisdictionNotFound, got %v", err)
	}
}

func TestUserDeletionCascades(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	store := repository.NewStore(db)

	user := testutil.NewUser().WithFireTarget("1000000").Build(t, db)
	pf := testutil.NewPortfolio(user.ID).Build(t, db)
	testutil.NewHolding(user.ID, pf.ID, "VTI").Build(t, db)
	testutil.NewIncome(user.ID, model.IncomeCategoryJob, "10").Build(t, db)
	testutil.NewExpense(user.ID, "rent", "5").Build(t, db)
	testutil.CreateTaxProfile(t, db, user.ID, "CA", "0.3")
	testutil.CreateSyncedAccount(t, db, user.ID, "tok")

	got, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() returned unexpected error: %v", err)
	}
	if !got.FireTarget.Valid || !got.FireTarget.Decimal.Equal(decimal.NewFromInt(1000000)) {
		t.Errorf("Expected FIRE target 1000000, got %v", got.FireTarget)
	}

	if err := store.Users.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser() returned unexpected error: %v", err)
	}

	for _, table := range []string{"portfolio", "holding", "income_record", "expense_record", "tax_profile", "synced_account"} {
		testutil.AssertRowCount(t, db, table, 0)
	}
	testutil.AssertRowCount(t, db, "tax_jurisdiction", 10)

	if err := store.Users.DeleteUser(ctx, user.ID); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)

	first := testutil.NewUser().Build(t, db)
	dup := model.User{ID: testutil.MakeID(), Name: "Other", Email: first.Email, CreatedAt: testutil.Fixed, UpdatedAt: testutil.Fixed}

	if err := repo.InsertUser(ctx, &dup); !errors.Is(err, apperrors.ErrDuplicateEntry) {
		t.Errorf("Expected ErrDuplicateEntry, got %v", err)
	}
}
