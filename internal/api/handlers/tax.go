package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// TaxHandler handles the tax profile and the jurisdiction table.
type TaxHandler struct {
	taxService *service.TaxProfileService
}

// NewTaxHandler creates a new TaxHandler.
func NewTaxHandler(taxService *service.TaxProfileService) *TaxHandler {
	return &TaxHandler{
		taxService: taxService,
	}
}

// GetTaxProfile returns the user's tax profile.
//
// Endpoint: GET /api/user/{uuid}/tax-profile
// Response: 200 OK with TaxProfile
// Error: 404 Not Found if no profile is set
func (h *TaxHandler) GetTaxProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.taxService.GetTaxProfile(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve tax profile")
		return
	}

	response.RespondJSON(w, http.StatusOK, profile)
}

// SetTaxProfile creates or replaces the user's tax profile.
//
// Endpoint: PUT /api/user/{uuid}/tax-profile
// Request Body: TaxProfileRequest (jurisdiction, effectiveRate, optional filingStatus)
// Response: 200 OK with TaxProfile
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the user does not exist
func (h *TaxHandler) SetTaxProfile(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.TaxProfileRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateTaxProfile(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	profile, err := h.taxService.SetTaxProfile(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to save tax profile")
		return
	}

	response.RespondJSON(w, http.StatusOK, profile)
}

// DeleteTaxProfile removes the user's tax profile.
//
// Endpoint: DELETE /api/user/{uuid}/tax-profile
// Response: 204 No Content
// Error: 404 Not Found if no profile is set
func (h *TaxHandler) DeleteTaxProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.taxService.DeleteTaxProfile(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, "failed to delete tax profile")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Jurisdictions lists the jurisdictions used by the tax comparison.
//
// Endpoint: GET /api/tax/jurisdiction
// Response: 200 OK with array of TaxJurisdiction
// Error: 500 Internal Server Error if retrieval fails
func (h *TaxHandler) Jurisdictions(w http.ResponseWriter, r *http.Request) {
	jurisdictions, err := h.taxService.GetJurisdictions(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieve.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, jurisdictions)
}
