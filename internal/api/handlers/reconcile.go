package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// ReconcileHandler handles duplicate detection between manual and synced holdings.
type ReconcileHandler struct {
	reconciliationService *service.ReconciliationService
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(reconciliationService *service.ReconciliationService) *ReconcileHandler {
	return &ReconcileHandler{
		reconciliationService: reconciliationService,
	}
}

// Candidates lists manual/synced pairs that look like the same position.
// Read-only.
//
// Endpoint: GET /api/user/{uuid}/reconcile/candidates
// Response: 200 OK with array of Candidate
// Error: 404 Not Found if the user does not exist
func (h *ReconcileHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.reconciliationService.GetCandidates(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to match holdings")
		return
	}

	response.RespondJSON(w, http.StatusOK, candidates)
}

// Apply resolves one pair with the user's choice.
//
// Endpoint: POST /api/user/{uuid}/reconcile
// Request Body: ApplyReconciliationRequest (manualHoldingId, syncedHoldingId, choice)
// Response: 201 Created with Reconciliation and a Location header
// Error: 400 Bad Request if validation fails or the holdings are not a pair
// Error: 404 Not Found if either holding does not exist
// Error: 409 Conflict if either holding changed since it was read
func (h *ReconcileHandler) Apply(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ApplyReconciliationRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateApplyReconciliation(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rec, err := h.reconciliationService.Apply(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to reconcile holdings")
		return
	}

	response.RespondCreated(w, r, rec.ID, rec)
}

// Auto keeps the synced side of every unambiguous HIGH confidence pair and
// returns the rest as pending decisions.
//
// Endpoint: POST /api/user/{uuid}/reconcile/auto
// Response: 200 OK with AutoResult
// Error: 404 Not Found if the user does not exist
func (h *ReconcileHandler) Auto(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliationService.AutoReconcile(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to reconcile holdings")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// History lists past reconciliations, newest first.
//
// Endpoint: GET /api/user/{uuid}/reconcile/history
// Response: 200 OK with array of Reconciliation
func (h *ReconcileHandler) History(w http.ResponseWriter, r *http.Request) {
	recs, err := h.reconciliationService.GetReconciliations(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve reconciliations")
		return
	}

	response.RespondJSON(w, http.StatusOK, recs)
}

// GetReconciliation returns one reconciliation.
//
// Endpoint: GET /api/user/{uuid}/reconcile/{reconciliationId}
// Response: 200 OK with Reconciliation
// Error: 404 Not Found if it does not exist
func (h *ReconcileHandler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.reconciliationService.GetReconciliation(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "reconciliationId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve reconciliation")
		return
	}

	response.RespondJSON(w, http.StatusOK, rec)
}

// Undo restores both original holdings of a reconciliation.
//
// Endpoint: POST /api/user/{uuid}/reconcile/{reconciliationId}/undo
// Response: 200 OK with Reconciliation
// Error: 404 Not Found if it does not exist
// Error: 409 Conflict if it was already undone
func (h *ReconcileHandler) Undo(w http.ResponseWriter, r *http.Request) {
	rec, err := h.reconciliationService.Undo(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "reconciliationId"))
	if err != nil {
		respondServiceError(w, err, "failed to undo reconciliation")
		return
	}

	response.RespondJSON(w, http.StatusOK, rec)
}
