package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// ExpenseHandler handles HTTP requests for expense records.
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
	}
}

// Expenses lists expenses applying to a month or date range. Recurring
// expenses started before the range are included.
//
// Endpoint: GET /api/user/{uuid}/expense?month=YYYY-MM | from=&to= [&category=]
// Response: 200 OK with array of ExpenseRecord
// Error: 400 Bad Request if the filters are invalid
func (h *ExpenseHandler) Expenses(w http.ResponseWriter, r *http.Request) {
	filters, err := recordFilters(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filters", err.Error())
		return
	}

	expenses, err := h.expenseService.GetExpenses(r.Context(), chi.URLParam(r, "uuid"), filters)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve expenses")
		return
	}

	response.RespondJSON(w, http.StatusOK, expenses)
}

// GetExpense returns one expense record.
//
// Endpoint: GET /api/user/{uuid}/expense/{expenseId}
// Response: 200 OK with ExpenseRecord
// Error: 404 Not Found if the record does not exist
func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.expenseService.GetExpense(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "expenseId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve expense")
		return
	}

	response.RespondJSON(w, http.StatusOK, expense)
}

// CreateExpense records a one-off or recurring expense.
//
// Endpoint: POST /api/user/{uuid}/expense
// Request Body: CreateExpenseRequest (amount, category, date, optional recurring, description)
// Response: 201 Created with ExpenseRecord and a Location header
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the user does not exist
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateExpenseRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateExpense(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	expense, err := h.expenseService.CreateExpense(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to create expense")
		return
	}

	response.RespondCreated(w, r, expense.ID, expense)
}

// DeleteExpense removes one expense record.
//
// Endpoint: DELETE /api/user/{uuid}/expense/{expenseId}
// Response: 204 No Content
// Error: 404 Not Found if the record does not exist
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.expenseService.DeleteExpense(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "expenseId")); err != nil {
		respondServiceError(w, err, "failed to delete expense")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
