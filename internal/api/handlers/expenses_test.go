package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/testutil"
)

func TestExpenseHandler(t *testing.T) {
	setupHandler := func(t *testing.T) (*ExpenseHandler, *sql.DB, model.User) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		user := testutil.NewUser().Build(t, db)
		return NewExpenseHandler(testutil.NewTestExpenseService(t, db)), db, user
	}

	t.Run("month listing includes recurring expenses started earlier", func(t *testing.T) {
		handler, db, user := setupHandler(t)
		testutil.NewExpense(user.ID, "rent", "1500").On(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).Recurring().Build(t, db)
		testutil.NewExpense(user.ID, "travel", "300").On(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)).Build(t, db)
		testutil.NewExpense(user.ID, "travel", "900").On(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)).Build(t, db)

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/user/"+user.ID+"/expense?month=2025-03", nil), user.ID)
		w := httptest.NewRecorder()

		handler.Expenses(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var expenses []model.ExpenseRecord
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&expenses)
		if len(expenses) != 2 {
			t.Fatalf("Expected rent and March travel, got %d records", len(expenses))
		}
		if !expenses[0].Recurring || expenses[0].Category != "rent" {
			t.Errorf("Expected the recurring rent first, got %+v", expenses[0])
		}
	})

	t.Run("category filter", func(t *testing.T) {
		handler, db, user := setupHandler(t)
		testutil.NewExpense(user.ID, "rent", "1500").Build(t, db)
		testutil.NewExpense(user.ID, "food", "400").Build(t, db)

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/user/"+user.ID+"/expense?month=2025-03&category=FOOD", nil), user.ID)
		w := httptest.NewRecorder()

		handler.Expenses(w, req)

		var expenses []model.ExpenseRecord
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&expenses)
		if len(expenses) != 1 || expenses[0].Category != "food" {
			t.Errorf("Expected only the food expense, got %+v", expenses)
		}
	})

	t.Run("invalid month returns 400", func(t *testing.T) {
		handler, _, user := setupHandler(t)

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/user/"+user.ID+"/expense?month=March", nil), user.ID)
		w := httptest.NewRecorder()

		handler.Expenses(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("create, get and delete", func(t *testing.T) {
		handler, db, user := setupHandler(t)
		params := map[string]string{"uuid": user.ID}

		req := testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/user/"+user.ID+"/expense", params,
			request.CreateExpenseRequest{
				Amount:    decimal.RequireFromString("1500.00"),
				Category:  " Rent ",
				Date:      "2025-01-01",
				Recurring: true,
			})
		w := httptest.NewRecorder()
		handler.CreateExpense(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var created model.ExpenseRecord
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&created)
		if created.Category != "rent" || !created.Recurring {
			t.Errorf("Unexpected expense: %+v", created)
		}

		idParams := map[string]string{"uuid": user.ID, "expenseId": created.ID}
		w = httptest.NewRecorder()
		handler.GetExpense(w, testutil.NewRequestWithURLParams(http.MethodGet, "/api/user/"+user.ID+"/expense/"+created.ID, idParams))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}

		w = httptest.NewRecorder()
		handler.DeleteExpense(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/api/user/"+user.ID+"/expense/"+created.ID, idParams))
		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", w.Code)
		}
		testutil.AssertRowCount(t, db, "expense_record", 0)

		w = httptest.NewRecorder()
		handler.DeleteExpense(w, testutil.NewRequestWithURLParams(http.MethodDelete, "/api/user/"+user.ID+"/expense/"+created.ID, idParams))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404 on second delete, got %d", w.Code)
		}
	})

	t.Run("invalid expense returns 400", func(t *testing.T) {
		handler, db, user := setupHandler(t)

		req := testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/user/"+user.ID+"/expense",
			map[string]string{"uuid": user.ID},
			request.CreateExpenseRequest{Amount: decimal.NewFromInt(-5), Category: "rent", Date: "2025-01-01"})
		w := httptest.NewRecorder()

		handler.CreateExpense(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
		testutil.AssertRowCount(t, db, "expense_record", 0)
	})

	t.Run("unknown user returns 404", func(t *testing.T) {
		handler, _, _ := setupHandler(t)
		missing := testutil.MakeID()

		req := testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/user/"+missing+"/expense",
			map[string]string{"uuid": missing},
			request.CreateExpenseRequest{Amount: decimal.NewFromInt(10), Category: "food", Date: "2025-03-01"})
		w := httptest.NewRecorder()

		handler.CreateExpense(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}
