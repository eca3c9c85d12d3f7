package handler

import (
	"errors"
	"net/http"

	"shop-inventory/internal/auth"
	"shop-inventory/internal/model"

	"github.com/rs/zerolog"
)

// AuthHandler handles login requests.
type AuthHandler struct {
	auth   auth.Authenticator
	logger zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authenticator auth.Authenticator, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authenticator,
		logger: logger.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /auth/login requests with form fields username and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidForm, "invalid form", h.logger)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "username and password are required", h.logger)
		return
	}

	token, err := h.auth.Authenticate(r.Context(), username, password)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
	})
}
