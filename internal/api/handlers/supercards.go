package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
)

// SuperCardHandler serves the five computed dashboards.
type SuperCardHandler struct {
	superCardService *service.SuperCardService
}

// NewSuperCardHandler creates a new SuperCardHandler.
func NewSuperCardHandler(superCardService *service.SuperCardService) *SuperCardHandler {
	return &SuperCardHandler{
		superCardService: superCardService,
	}
}

func superCardQuery(r *http.Request) (service.SuperCardQuery, error) {
	var q service.SuperCardQuery

	period, err := model.ParsePeriod(strings.ToUpper(r.URL.Query().Get("period")))
	if err != nil {
		return q, err
	}
	q.Period = period

	if month := r.URL.Query().Get("month"); month != "" {
		m, err := request.ParseMonth(month)
		if err != nil {
			return q, err
		}
		q.Month = m
	}
	return q, nil
}

func (h *SuperCardHandler) compute(w http.ResponseWriter, r *http.Request) (*model.SuperCards, bool) {
	q, err := superCardQuery(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query", err.Error())
		return nil, false
	}

	cards, err := h.superCardService.ComputeSuperCards(r.Context(), chi.URLParam(r, "uuid"), q)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToComputeSuperCards.Error())
		return nil, false
	}
	return cards, true
}

// SuperCards returns all five cards. Cards degrade to stale or unavailable
// figures when market data is missing; only a record store failure is an error.
//
// Endpoint: GET /api/user/{uuid}/supercards?period=1M|3M|6M|1Y|ALL&month=YYYY-MM
// Response: 200 OK with SuperCards
// Error: 400 Bad Request if period or month is invalid
// Error: 404 Not Found if the user does not exist
// Error: 500 Internal Server Error if the record store fails
func (h *SuperCardHandler) SuperCards(w http.ResponseWriter, r *http.Request) {
	cards, ok := h.compute(w, r)
	if !ok {
		return
	}

	response.RespondJSON(w, http.StatusOK, cards)
}

// SuperCard returns a single card.
//
// Endpoint: GET /api/user/{uuid}/supercards/{card}
// card: performance | income | tax | portfolio | planning
// Response: 200 OK with the card
// Error: 404 Not Found if the card name is unknown or the user does not exist
func (h *SuperCardHandler) SuperCard(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "card"))
	switch name {
	case "performance", "income", "tax", "portfolio", "planning":
	default:
		response.RespondError(w, http.StatusNotFound, "unknown card", name)
		return
	}

	cards, ok := h.compute(w, r)
	if !ok {
		return
	}

	var card any
	switch name {
	case "performance":
		card = cards.Performance
	case "income":
		card = cards.Income
	case "tax":
		card = cards.TaxStrategy
	case "portfolio":
		card = cards.PortfolioStrategy
	case "planning":
		card = cards.FinancialPlanning
	}
	response.RespondJSON(w, http.StatusOK, card)
}
