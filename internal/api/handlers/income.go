package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// maxImportBytes bounds CSV uploads.
const maxImportBytes = 5 << 20

// IncomeHandler handles HTTP requests for income records.
type IncomeHandler struct {
	incomeService *service.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{
		incomeService: incomeService,
	}
}

// recordFilters reads month, from, to and category from the query string.
func recordFilters(r *http.Request) (*request.RecordFilters, error) {
	q := r.URL.Query()
	return request.ParseRecordFilters(q.Get("month"), q.Get("from"), q.Get("to"), q.Get("category"), time.Now().UTC())
}

// Income lists the user's income records for a month or date range.
//
// Endpoint: GET /api/user/{uuid}/income?month=YYYY-MM | from=&to= [&category=]
// Response: 200 OK with array of IncomeRecord
// Error: 400 Bad Request if the filters are invalid
func (h *IncomeHandler) Income(w http.ResponseWriter, r *http.Request) {
	filters, err := recordFilters(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filters", err.Error())
		return
	}

	records, err := h.incomeService.GetIncome(r.Context(), chi.URLParam(r, "uuid"), filters)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve income")
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// GetIncome returns one income record.
//
// Endpoint: GET /api/user/{uuid}/income/{incomeId}
// Response: 200 OK with IncomeRecord
// Error: 404 Not Found if the record does not exist
func (h *IncomeHandler) GetIncome(w http.ResponseWriter, r *http.Request) {
	record, err := h.incomeService.GetIncomeRecord(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "incomeId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve income")
		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}

// CreateIncome records income received.
//
// Endpoint: POST /api/user/{uuid}/income
// Request Body: CreateIncomeRequest (amount, category, receivedAt, optional description, holdingId)
// Response: 201 Created with IncomeRecord and a Location header
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the user or linked holding does not exist
func (h *IncomeHandler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateIncomeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateIncome(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	record, err := h.incomeService.CreateIncome(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to create income")
		return
	}

	response.RespondCreated(w, r, record.ID, record)
}

// ImportIncome loads income records from CSV. The body is either raw CSV or a
// multipart form with the file in the "file" field. Nothing is stored unless
// every row is valid.
//
// Endpoint: POST /api/user/{uuid}/income/import
// Request Body: CSV with header amount,category,received_at[,description]
// Response: 201 Created with ImportResult
// Error: 400 Bad Request with per-line errors if any row is invalid
// Error: 404 Not Found if the user does not exist
func (h *IncomeHandler) ImportIncome(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	var body io.Reader = r.Body

	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.incomeService.ImportIncomeCSV(r.Context(), chi.URLParam(r, "uuid"), body)
	if err != nil {
		if result != nil && errors.Is(err, apperrors.ErrInvalidInput) {
			response.RespondError(w, http.StatusBadRequest, "import rejected", result.Errors)
			return
		}
		respondServiceError(w, err, "failed to import income")
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// DeleteIncome removes one income record.
//
// Endpoint: DELETE /api/user/{uuid}/income/{incomeId}
// Response: 204 No Content
// Error: 404 Not Found if the record does not exist
func (h *IncomeHandler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := h.incomeService.DeleteIncome(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "incomeId")); err != nil {
		respondServiceError(w, err, "failed to delete income")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
