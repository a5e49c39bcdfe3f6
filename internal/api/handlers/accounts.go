package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api/request"
	"github.com/ndewijer/Income-Clarity-Backend/internal/api/response"
	"github.com/ndewijer/Income-Clarity-Backend/internal/service"
	"github.com/ndewijer/Income-Clarity-Backend/internal/validation"
)

// AccountHandler handles bank-aggregator account links and their imports.
type AccountHandler struct {
	accountService *service.SyncedAccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.SyncedAccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// Accounts lists the user's linked accounts. Access tokens are never returned.
//
// Endpoint: GET /api/user/{uuid}/account
// Response: 200 OK with array of SyncedAccount
func (h *AccountHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.GetAccounts(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve accounts")
		return
	}

	response.RespondJSON(w, http.StatusOK, accounts)
}

// GetAccount returns one linked account with its sync status.
//
// Endpoint: GET /api/user/{uuid}/account/{accountId}
// Response: 200 OK with SyncedAccount
// Error: 404 Not Found if the account does not exist
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetAccount(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "accountId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve account")
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// LinkAccount stores a new aggregator link with its access token encrypted.
//
// Endpoint: POST /api/user/{uuid}/account
// Request Body: LinkAccountRequest (provider, externalAccountId, accessToken)
// Response: 201 Created with SyncedAccount and a Location header
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the account is already linked
func (h *AccountHandler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LinkAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateLinkAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.LinkAccount(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to link account")
		return
	}

	response.RespondCreated(w, r, account.ID, account)
}

// UnlinkAccount removes a link. Imported records stay.
//
// Endpoint: DELETE /api/user/{uuid}/account/{accountId}
// Response: 204 No Content
// Error: 404 Not Found if the account does not exist
func (h *AccountHandler) UnlinkAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accountService.UnlinkAccount(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "accountId")); err != nil {
		respondServiceError(w, err, "failed to unlink account")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// SyncAccount imports a snapshot of positions and income from the aggregator.
// Re-sending the same snapshot changes nothing.
//
// Endpoint: POST /api/user/{uuid}/account/{accountId}/sync
// Request Body: SyncSnapshotRequest (portfolioId, holdings[], income[])
// Response: 200 OK with SyncResult
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the account or portfolio does not exist
// Error: 409 Conflict if the stored access token can no longer be opened
func (h *AccountHandler) SyncAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SyncSnapshotRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSyncSnapshot(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.accountService.ImportSnapshot(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "accountId"), req)
	if err != nil {
		respondServiceError(w, err, "failed to sync account")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
