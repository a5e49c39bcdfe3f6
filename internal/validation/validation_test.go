package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	return verr.Fields
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("c0a8f3e2-4b1d-4e5f-9a6b-7c8d9e0f1a2b"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); !errors.Is(err, ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

func TestValidateCreateHolding(t *testing.T) {
	valid := request.CreateHoldingRequest{
		PortfolioID: "c0a8f3e2-4b1d-4e5f-9a6b-7c8d9e0f1a2b",
		Ticker:      "schd",
		Shares:      decimal.NewFromInt(100),
		CostBasis:   decimal.NewFromInt(7500),
	}

	t.Run("accepts lower-case ticker", func(t *testing.T) {
		if err := ValidateCreateHolding(valid); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("rejects bad portfolio id", func(t *testing.T) {
		req := valid
		req.PortfolioID = "nope"
		if err := ValidateCreateHolding(req); !errors.Is(err, ErrInvalidUUID) {
			t.Errorf("Expected ErrInvalidUUID, got %v", err)
		}
	})

	t.Run("reports every bad field", func(t *testing.T) {
		req := valid
		req.Ticker = "SCHD!"
		req.Shares = decimal.Zero
		req.CostBasis = decimal.NewFromInt(-1)
		f := fields(t, ValidateCreateHolding(req))
		for _, key := range []string{"ticker", "shares", "costBasis"} {
			if _, ok := f[key]; !ok {
				t.Errorf("Expected error for %s, got %v", key, f)
			}
		}
	})
}

func TestValidateCreateIncome(t *testing.T) {
	holdingID := "c0a8f3e2-4b1d-4e5f-9a6b-7c8d9e0f1a2b"

	t.Run("dividend with holding", func(t *testing.T) {
		err := ValidateCreateIncome(request.CreateIncomeRequest{
			Amount: decimal.NewFromInt(25), Category: "Dividend", ReceivedAt: "2025-03-01", HoldingID: &holdingID,
		})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("holding only on dividends", func(t *testing.T) {
		f := fields(t, ValidateCreateIncome(request.CreateIncomeRequest{
			Amount: decimal.NewFromInt(25), Category: "job", ReceivedAt: "2025-03-01", HoldingID: &holdingID,
		}))
		if _, ok := f["holdingId"]; !ok {
			t.Errorf("Expected holdingId error, got %v", f)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		f := fields(t, ValidateCreateIncome(request.CreateIncomeRequest{}))
		if len(f) != 3 {
			t.Errorf("Expected 3 errors, got %v", f)
		}
	})
}

func TestValidateTaxProfile(t *testing.T) {
	if err := ValidateTaxProfile(request.TaxProfileRequest{Jurisdiction: "CA", EffectiveRate: decimal.RequireFromString("0.33")}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	f := fields(t, ValidateTaxProfile(request.TaxProfileRequest{EffectiveRate: decimal.RequireFromString("1.2")}))
	if _, ok := f["effectiveRate"]; !ok {
		t.Errorf("Expected effectiveRate error, got %v", f)
	}
}

func TestValidateSyncSnapshot(t *testing.T) {
	f := fields(t, ValidateSyncSnapshot(request.SyncSnapshotRequest{
		PortfolioID: "c0a8f3e2-4b1d-4e5f-9a6b-7c8d9e0f1a2b",
		Holdings:    []request.SyncedPosition{{Ticker: "VTI", Shares: decimal.Zero}},
		Income:      []request.SyncedIncome{{Amount: decimal.NewFromInt(5), Category: "bonus", ReceivedAt: "2025-03-01"}},
	}))
	if _, ok := f["holdings[0].shares"]; !ok {
		t.Errorf("Expected share error, got %v", f)
	}
	if _, ok := f["income[0].category"]; !ok {
		t.Errorf("Expected category error, got %v", f)
	}
}

func TestValidateApplyReconciliation(t *testing.T) {
	id := "c0a8f3e2-4b1d-4e5f-9a6b-7c8d9e0f1a2b"
	f := fields(t, ValidateApplyReconciliation(request.ApplyReconciliationRequest{
		ManualHoldingID: id, SyncedHoldingID: id, Choice: "pick one",
	}))
	if len(f) != 2 {
		t.Errorf("Expected syncedHoldingId and choice errors, got %v", f)
	}
}

func TestValidateCreateUser(t *testing.T) {
	bad := decimal.RequireFromString("1.5")
	f := fields(t, ValidateCreateUser(request.CreateUserRequest{Name: "Ada", Email: "ada", ExpectedReturn: &bad}))
	if _, ok := f["email"]; !ok {
		t.Errorf("Expected email error, got %v", f)
	}
	if _, ok := f["expectedReturn"]; !ok {
		t.Errorf("Expected expectedReturn error, got %v", f)
	}
}

func TestValidatePortfolio(t *testing.T) {
	long := strings.Repeat("x", 101)
	accented := strings.Repeat("é", 100)

	tests := []struct {
		name    string
		req     request.CreatePortfolioRequest
		invalid []string
	}{
		{"valid", request.CreatePortfolioRequest{Name: "Dividend core", Description: "SCHD, VYM\nrebalanced yearly"}, nil},
		{"name counted in characters", request.CreatePortfolioRequest{Name: accented}, nil},
		{"blank name", request.CreatePortfolioRequest{Name: "   "}, []string{"name"}},
		{"long name", request.CreatePortfolioRequest{Name: long}, []string{"name"}},
		{"name with newline", request.CreatePortfolioRequest{Name: "Core\nholdings"}, []string{"name"}},
		{"long description", request.CreatePortfolioRequest{Name: "Core", Description: strings.Repeat("d", 501)}, []string{"description"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreatePortfolio(tt.req)
			if len(tt.invalid) == 0 {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			f := fields(t, err)
			for _, key := range tt.invalid {
				if _, ok := f[key]; !ok {
					t.Errorf("Expected error for %s, got %v", key, f)
				}
			}
		})
	}

	t.Run("update checks only provided fields", func(t *testing.T) {
		empty := ""
		if err := ValidateUpdatePortfolio(request.UpdatePortfolioRequest{Description: &empty}); err != nil {
			t.Errorf("Expected clearing the description to be allowed, got %v", err)
		}
		f := fields(t, ValidateUpdatePortfolio(request.UpdatePortfolioRequest{Name: &empty}))
		if f["name"] != "name is required" {
			t.Errorf("Unexpected name error: %v", f)
		}
	})
}
