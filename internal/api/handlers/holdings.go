package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// HoldingHandler handles HTTP requests for manually entered holdings.
type HoldingHandler struct {
	holdingService *service.HoldingService
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingService *service.HoldingService) *HoldingHandler {
	return &HoldingHandler{
		holdingService: holdingService,
	}
}

// Holdings lists the user's live holdings across portfolios.
//
// Endpoint: GET /api/user/{uuid}/holding
// Response: 200 OK with array of Holding
func (h *HoldingHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdingService.GetHoldings(r.Context(), chi.URLParam(r, "uuid"), "")
	if err != nil {
		respondServiceError(w, err, "failed to retrieve holdings")
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

// GetHolding returns one live holding.
//
// Endpoint: GET /api/user/{uuid}/holding/{holdingId}
// Response: 200 OK with Holding
// Error: 404 Not Found if the holding does not exist or was deleted
func (h *HoldingHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	holding, err := h.holdingService.GetHolding(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "holdingId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve holding")
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}

// CreateHolding adds a MANUAL holding.
//
// Endpoint: POST /api/user/{uuid}/holding
// Request Body: CreateHoldingRequest (portfolioId, ticker, shares, costBasis, optional sector)
// Response: 201 Created with Holding and a Location header
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the portfolio does not exist
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateHolding(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	holding, err := h.holdingService.CreateHolding(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to create holding")
		return
	}

	response.RespondCreated(w, r, holding.ID, holding)
}

// UpdateHolding handles PUT requests to update a holding.
//
// Endpoint: PUT /api/user/{uuid}/holding/{holdingId}
// Request Body: UpdateHoldingRequest (all fields optional)
// Response: 200 OK with Holding
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the holding or target portfolio does not exist
func (h *HoldingHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateHolding(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	holding, err := h.holdingService.UpdateHolding(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "holdingId"), req)
	if err != nil {
		respondServiceError(w, err, "failed to update holding")
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}

// DeleteHolding soft-deletes a holding.
//
// Endpoint: DELETE /api/user/{uuid}/holding/{holdingId}
// Response: 204 No Content
// Error: 404 Not Found if the holding does not exist
func (h *HoldingHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := h.holdingService.DeleteHolding(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "holdingId")); err != nil {
		respondServiceError(w, err, "failed to delete holding")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
