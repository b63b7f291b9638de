package handler

import (
	"log/slog"
	"net/http"

	"github.com/Stewz00/mailforge-api/internal/apperror"
	"github.com/Stewz00/mailforge-api/internal/auth"
	"github.com/Stewz00/mailforge-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

type ProfileResponse struct {
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

// Signup handles user registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{Message: "Signup successful", AccessToken: result.Token})
}

// Login handles user authentication and returns a JWT token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Message: "Login successful", AccessToken: result.Token})
}

// Profile returns the caller's record. It must run behind auth.RequireAuth.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthenticated("Missing bearer token"))
		return
	}

	user, err := h.authService.Profile(r.Context(), identity)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Email: user.Email, IsVerified: user.IsVerified})
}
