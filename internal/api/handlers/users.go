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

// UserHandler handles HTTP requests for user endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Users handles GET requests to list all users.
//
// Endpoint: GET /api/user
// Response: 200 OK with array of User
// Error: 500 Internal Server Error if retrieval fails
func (h *UserHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetUsers(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieve.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, users)
}

// GetUser handles GET requests for one user including their FIRE settings.
//
// Endpoint: GET /api/user/{uuid}
// Response: 200 OK with User
// Error: 404 Not Found if the user does not exist
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve user")
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// CreateUser handles POST requests to create a user.
//
// Endpoint: POST /api/user
// Request Body: CreateUserRequest (name, email, optional fireTarget, expectedReturn, monthlyInvestment)
// Response: 201 Created with User and a Location header
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the email is already registered
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateUserRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateUser(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to create user")
		return
	}

	response.RespondCreated(w, r, user.ID, user)
}

// UpdateUser handles PUT requests. A zero FIRE setting clears it.
//
// Endpoint: PUT /api/user/{uuid}
// Request Body: UpdateUserRequest (all fields optional)
// Response: 200 OK with User
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the user does not exist
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateUserRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateUser(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to update user")
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE requests. Every record of the user is removed.
//
// Endpoint: DELETE /api/user/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the user does not exist
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteUser(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, "failed to delete user")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
