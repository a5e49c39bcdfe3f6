package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/testutil"
)

func TestAccountHandler(t *testing.T) {
	setupHandler := func(t *testing.T) (*AccountHandler, *sql.DB, model.User) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		user := testutil.NewUser().Build(t, db)
		svc := testutil.NewTestSyncedAccountService(t, db, testutil.NewTestTokenCipher(t))
		return NewAccountHandler(svc), db, user
	}

	link := func(t *testing.T, handler *AccountHandler, userID string) model.SyncedAccount {
		t.Helper()
		w := httptest.NewRecorder()
		handler.LinkAccount(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", map[string]string{"uuid": userID}, request.LinkAccountRequest{
			Provider:          "plaid",
			ExternalAccountID: "acc-123",
			AccessToken:       "access-sandbox-secret",
		}))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var account model.SyncedAccount
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&account)
		return account
	}

	t.Run("link never echoes the token", func(t *testing.T) {
		handler, _, user := setupHandler(t)

		w := httptest.NewRecorder()
		handler.LinkAccount(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", map[string]string{"uuid": user.ID}, request.LinkAccountRequest{
			Provider:          "plaid",
			ExternalAccountID: "acc-123",
			AccessToken:       "access-sandbox-secret",
		}))

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var raw map[string]any
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&raw)
		if _, ok := raw["accessToken"]; ok {
			t.Error("Expected no accessToken in the response")
		}
	})

	t.Run("duplicate link returns 409", func(t *testing.T) {
		handler, _, user := setupHandler(t)
		link(t, handler, user.ID)

		w := httptest.NewRecorder()
		handler.LinkAccount(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", map[string]string{"uuid": user.ID}, request.LinkAccountRequest{
			Provider:          "plaid",
			ExternalAccountID: "acc-123",
			AccessToken:       "another-token",
		}))

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		handler, _, user := setupHandler(t)

		w := httptest.NewRecorder()
		handler.LinkAccount(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", map[string]string{"uuid": user.ID}, request.LinkAccountRequest{Provider: "plaid"}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("sync imports positions and is idempotent", func(t *testing.T) {
		handler, db, user := setupHandler(t)
		portfolio := testutil.NewPortfolio(user.ID).Build(t, db)
		account := link(t, handler, user.ID)
		params := map[string]string{"uuid": user.ID, "accountId": account.ID}

		snapshot := request.SyncSnapshotRequest{
			PortfolioID: portfolio.ID,
			Holdings: []request.SyncedPosition{
				{Ticker: "SCHD", Shares: decimal.NewFromInt(100), CostBasis: decimal.NewFromInt(7500)},
			},
			Income: []request.SyncedIncome{
				{Amount: decimal.RequireFromString("61.20"), Category: "dividend", ReceivedAt: "2025-03-10"},
			},
		}

		var results []service.SyncResult
		for range 2 {
			w := httptest.NewRecorder()
			handler.SyncAccount(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", params, snapshot))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var result service.SyncResult
			//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
			json.NewDecoder(w.Body).Decode(&result)
			results = append(results, result)
		}

		if results[0].HoldingsCreated != 1 || results[0].IncomeImported != 1 {
			t.Errorf("Unexpected first sync result: %+v", results[0])
		}
		if results[1].HoldingsCreated != 0 || results[1].IncomeSkipped != 1 {
			t.Errorf("Unexpected second sync result: %+v", results[1])
		}
		testutil.AssertRowCount(t, db, "holding", 1)
		testutil.AssertRowCount(t, db, "income_record", 1)

		w := httptest.NewRecorder()
		handler.GetAccount(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", params))
		var synced model.SyncedAccount
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&synced)
		if synced.LastSyncAt == nil {
			t.Error("Expected lastSyncAt to be set after a sync")
		}
	})

	t.Run("sync with an invalid position returns 400", func(t *testing.T) {
		handler, db, user := setupHandler(t)
		portfolio := testutil.NewPortfolio(user.ID).Build(t, db)
		account := link(t, handler, user.ID)

		w := httptest.NewRecorder()
		handler.SyncAccount(w, testutil.NewJSONRequestWithURLParams(http.MethodPost, "/", map[string]string{"uuid": user.ID, "accountId": account.ID},
			request.SyncSnapshotRequest{
				PortfolioID: portfolio.ID,
				Holdings:    []request.SyncedPosition{{Ticker: "SCHD", Shares: decimal.Zero}},
			}))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("unlink returns 204 and the account is gone", func(t *testing.T) {
		handler, _, user := setupHandler(t)
		account := link(t, handler, user.ID)
		params := map[string]string{"uuid": user.ID, "accountId": account.ID}

		w := httptest.NewRecorder()
		handler.UnlinkAccount(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/", params))
		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		handler.GetAccount(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", params))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		handler.Accounts(w, testutil.NewRequestWithURLParams(http.MethodGet, "/", map[string]string{"uuid": user.ID}))
		var accounts []model.SyncedAccount
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&accounts)
		if len(accounts) != 0 {
			t.Errorf("Expected no accounts, got %d", len(accounts))
		}
	})
}
