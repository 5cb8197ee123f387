package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/instagram-backend/internal/user"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithValidationErrors(w http.ResponseWriter, validationErrors validator.ValidationErrors) {
	details := formatValidationErrors(validationErrors)
	respondWithError(w, http.StatusBadRequest, "Validation failed: "+strings.Join(details, "; "))
}

func formatValidationErrors(validationErrors validator.ValidationErrors) []string {
	details := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("Field '%s' is required", fe.Field())
		case "min":
			msg = fmt.Sprintf("Field '%s' must be at least %s characters long", fe.Field(), fe.Param())
		case "max":
			msg = fmt.Sprintf("Field '%s' must be at most %s characters long", fe.Field(), fe.Param())
		case "email":
			msg = fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
		case "gt":
			msg = fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
		default:
			msg = fmt.Sprintf("Field '%s' failed on the '%s' rule", fe.Field(), fe.Tag())
		}
		details = append(details, msg)
	}
	return details
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailExists), errors.Is(err, user.ErrUsernameExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrPasswordRequired), errors.Is(err, user.ErrPasswordTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage exposes domain errors to the caller and hides everything else behind fallback.
func clientMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrUsernameExists),
		errors.Is(err, user.ErrPasswordRequired),
		errors.Is(err, user.ErrPasswordTooLong):
		return err.Error()
	default:
		return fallback
	}
}
