package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/testutil"
)

func TestIncomeService_GetIncome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestIncomeService(t, db)
	user := testutil.NewUser().Build(t, db)

	testutil.NewIncome(user.ID, model.IncomeCategoryJob, "5000").Build(t, db)
	testutil.NewIncome(user.ID, model.IncomeCategoryDividend, "120").Build(t, db)
	testutil.NewIncome(user.ID, model.IncomeCategoryJob, "5000").
		ReceivedAt(testutil.Fixed.AddDate(0, -1, 0)).Build(t, db)

	filters, err := request.ParseRecordFilters("2025-03", "", "", "", testutil.Fixed)
	if err != nil {
		t.Fatalf("ParseRecordFilters() returned unexpected error: %v", err)
	}

	t.Run("month range", func(t *testing.T) {
		records, err := svc.GetIncome(context.Background(), user.ID, filters)
		if err != nil {
			t.Fatalf("GetIncome() returned unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("Expected 2 records in March, got %d", len(records))
		}
	})

	t.Run("category filter", func(t *testing.T) {
		f := *filters
		f.Category = "dividend"
		records, err := svc.GetIncome(context.Background(), user.ID, &f)
		if err != nil {
			t.Fatalf("GetIncome() returned unexpected error: %v", err)
		}
		if len(records) != 1 || !records[0].Amount.Equal(decimal.NewFromInt(120)) {
			t.Errorf("Expected the single dividend, got %v", records)
		}
	})
}

func TestIncomeService_CreateIncome(t *testing.T) {
	ctx := context.Background()

	t.Run("dividend linked to holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIncomeService(t, db)
		user := testutil.NewUser().Build(t, db)
		p := testutil.NewPortfolio(user.ID).Build(t, db)
		h := testutil.NewHolding(user.ID, p.ID, "SCHD").Build(t, db)

		rec, err := svc.CreateIncome(ctx, user.ID, request.CreateIncomeRequest{
			Amount: decimal.RequireFromString("25.50"), Category: "Dividend", ReceivedAt: "2025-03-03", HoldingID: &h.ID,
		})
		if err != nil {
			t.Fatalf("CreateIncome() returned unexpected error: %v", err)
		}
		if rec.Category != model.IncomeCategoryDividend || !rec.ReceivedAt.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Unexpected record: %+v", rec)
		}
	})

	t.Run("unknown holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIncomeService(t, db)
		user := testutil.NewUser().Build(t, db)
		missing := testutil.MakeID()

		_, err := svc.CreateIncome(ctx, user.ID, request.CreateIncomeRequest{
			Amount: decimal.NewFromInt(1), Category: "dividend", ReceivedAt: "2025-03-03", HoldingID: &missing,
		})
		if !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
	})
}

func TestIncomeService_ImportIncomeCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("imports all rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIncomeService(t, db)
		user := testutil.NewUser().Build(t, db)

		csv := "amount,category,received_at,description\n" +
			"5000,job,2025-03-01,salary\n" +
			"42.10,dividend,2025-03-14T16:00:00Z,SCHD\n"

		result, err := svc.ImportIncomeCSV(ctx, user.ID, strings.NewReader(csv))
		if err != nil {
			t.Fatalf("ImportIncomeCSV() returned unexpected error: %v", err)
		}
		if result.Imported != 2 {
			t.Errorf("Expected 2 imported rows, got %d", result.Imported)
		}
		testutil.AssertRowCount(t, db, "income_record", 2)
	})

	t.Run("one bad row aborts the import", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIncomeService(t, db)
		user := testutil.NewUser().Build(t, db)

		csv := "amount,category,received_at\n" +
			"5000,job,2025-03-01\n" +
			"abc,job,2025-03-02\n" +
			"10,lottery,2025-03-03\n"

		result, err := svc.ImportIncomeCSV(ctx, user.ID, strings.NewReader(csv))
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("Expected ErrInvalidInput, got %v", err)
		}
		if len(result.Errors) != 2 {
			t.Errorf("Expected errors for lines 3 and 4, got %v", result.Errors)
		}
		if _, ok := result.Errors["line 3"]; !ok {
			t.Errorf("Expected an error on line 3, got %v", result.Errors)
		}
		testutil.AssertRowCount(t, db, "income_record", 0)
	})

	t.Run("missing column", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIncomeService(t, db)
		user := testutil.NewUser().Build(t, db)

		_, err := svc.ImportIncomeCSV(ctx, user.ID, strings.NewReader("amount,category\n1,job\n"))
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})
}
