package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/apperrors"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("failed to decode request body: %w", err)
	}
	return req, nil
}

var notFoundErrors = []error{
	apperrors.ErrUserNotFound,
	apperrors.ErrPortfolioNotFound,
	apperrors.ErrHoldingNotFound,
	apperrors.ErrIncomeNotFound,
	apperrors.ErrExpenseNotFound,
	apperrors.ErrTaxProfileNotFound,
	apperrors.ErrJurisdictionNotFound,
	apperrors.ErrSyncedAccountNotFound,
	apperrors.ErrReconciliationNotFound,
}

var conflictErrors = []error{
	apperrors.ErrDuplicateEntry,
	apperrors.ErrReconciliationConflict,
	apperrors.ErrAlreadyUndone,
	apperrors.ErrAccountTokenInvalid,
}

// respondServiceError maps a service error onto an HTTP status.
// Errors outside the known sentinels are reported as 500 with message.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			response.RespondError(w, http.StatusNotFound, target.Error(), err.Error())
			return
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			response.RespondError(w, http.StatusConflict, target.Error(), err.Error())
			return
		}
	}
	if errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrInvalidTicker) || errors.Is(err, apperrors.ErrInvalidUUID) {
		response.RespondError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	response.RespondError(w, http.StatusInternalServerError, message, err.Error())
}
