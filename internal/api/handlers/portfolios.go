package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	holdingService   *service.HoldingService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, holdingService *service.HoldingService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		holdingService:   holdingService,
	}
}

// Portfolios lists the user's portfolios.
//
// Endpoint: GET /api/user/{uuid}/portfolio
// Response: 200 OK with array of Portfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.GetPortfolios(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve portfolios")
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolios)
}

// GetPortfolio returns one portfolio.
//
// Endpoint: GET /api/user/{uuid}/portfolio/{portfolioId}
// Response: 200 OK with Portfolio
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "portfolioId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve portfolio")
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// PortfolioHoldings lists the live holdings of one portfolio.
//
// Endpoint: GET /api/user/{uuid}/portfolio/{portfolioId}/holding
// Response: 200 OK with array of Holding
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) PortfolioHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdingService.GetHoldings(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "portfolioId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve holdings")
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

// CreatePortfolio handles POST requests to create a portfolio.
//
// Endpoint: POST /api/user/{uuid}/portfolio
// Request Body: CreatePortfolioRequest (name, optional description)
// Response: 201 Created with Portfolio and a Location header
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the user does not exist
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to create portfolio")
		return
	}

	response.RespondCreated(w, r, portfolio.ID, portfolio)
}

// UpdatePortfolio handles PUT requests to update an existing portfolio.
//
// Endpoint: PUT /api/user/{uuid}/portfolio/{portfolioId}
// Request Body: UpdatePortfolioRequest (all fields optional)
// Response: 200 OK with updated Portfolio
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdatePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "portfolioId"), req)
	if err != nil {
		respondServiceError(w, err, "failed to update portfolio")
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio removes a portfolio and its holdings.
//
// Endpoint: DELETE /api/user/{uuid}/portfolio/{portfolioId}
// Response: 204 No Content
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.DeletePortfolio(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "portfolioId")); err != nil {
		respondServiceError(w, err, "failed to delete portfolio")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
