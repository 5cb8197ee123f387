package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/instagram-backend/internal/user"
)

// CreateUserRequest accepts ID and EncryptedPassword so clients can post a full
// user object. Both are discarded.
type CreateUserRequest struct {
	ID                int64   `json:"id,omitempty"`
	FullName          string  `json:"fullName" validate:"required,min=2,max=255"`
	Username          string  `json:"username" validate:"required,min=3,max=100"`
	Email             string  `json:"email" validate:"required,email,max=255"`
	Password          string  `json:"password" validate:"required,min=8,max=72"`
	EncryptedPassword *string `json:"encryptedPassword,omitempty"`
}

// UpdateUserRequest carries the id in the body. Omitted fields keep their stored value.
// EncryptedPassword is discarded.
type UpdateUserRequest struct {
	ID                int64   `json:"id" validate:"required,gt=0"`
	FullName          string  `json:"fullName,omitempty" validate:"omitempty,min=2,max=255"`
	Username          string  `json:"username,omitempty" validate:"omitempty,min=3,max=100"`
	Email             string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password          *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	EncryptedPassword *string `json:"encryptedPassword,omitempty"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(dto *user.UserDto) UserResponse {
	return UserResponse{
		ID:       dto.ID,
		FullName: dto.FullName,
		Username: dto.Username,
		Email:    dto.Email,
	}
}

type UserHandler struct {
	service  user.Service
	validate *validator.Validate
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.handleGetUsers)
	router.Post("/users", h.handleCreateUser)
	router.Put("/users", h.handleUpdateUser)
	router.Get("/users/{id}", h.handleGetUserByID)
	router.Delete("/users/{id}", h.handleDeleteUser)
}

func (h *UserHandler) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.FindAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get users")
		return
	}

	responsePayload := make([]UserResponse, 0, len(users))
	for i := range users {
		responsePayload = append(responsePayload, toUserResponse(&users[i]))
	}

	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *UserHandler) handleGetUserByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	foundUser, err := h.service.FindByID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get user by id via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get user by id"))
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(foundUser))
}

func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateUserRequest
	if !h.decodeAndValidate(w, r, &requestPayload) {
		return
	}

	createdUser, err := h.service.CreateUser(r.Context(), user.UserDto{
		FullName: requestPayload.FullName,
		Username: requestPayload.Username,
		Email:    requestPayload.Email,
		Password: &requestPayload.Password,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to create user"))
		return
	}

	respondWithJSON(w, http.StatusCreated, toUserResponse(createdUser))
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateUserRequest
	if !h.decodeAndValidate(w, r, &requestPayload) {
		return
	}

	updatedUser, err := h.service.UpdateUser(r.Context(), user.UserDto{
		ID:       requestPayload.ID,
		FullName: requestPayload.FullName,
		Username: requestPayload.Username,
		Email:    requestPayload.Email,
		Password: requestPayload.Password,
	})
	if err != nil {
		log.Error().Err(err).Int64("user_id", requestPayload.ID).Msg("Failed to update user via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to update user"))
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(updatedUser))
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to delete user via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to delete user"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeAndValidate writes the 400 response itself and reports whether the handler may continue.
func (h *UserHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithValidationErrors(w, validationErrors)
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}

	return true
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || userID <= 0 {
		log.Warn().Err(err).Str("user_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return userID, true
}
