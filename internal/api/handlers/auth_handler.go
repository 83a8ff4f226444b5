package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/services"
	"github.com/securevote/securevote-be/internal/views"
)

// AuthHandler handles sign in and sign out.
type AuthHandler struct {
	accounts services.AccountServiceProvider
	audit    services.AuditServiceProvider
	tokens   *auth.Manager
	secure   bool
}

// NewAuthHandler creates a new AuthHandler. secure marks the session
// cookie Secure.
func NewAuthHandler(accounts services.AccountServiceProvider, audit services.AuditServiceProvider, tokens *auth.Manager, secure bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, audit: audit, tokens: tokens, secure: secure}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
	Page      views.Page  `json:"page"`
}

// signIn checks the credentials, records the attempt and sets the session
// cookie.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, email, password string) (models.User, string, time.Time, error) {
	ip := clientIP(r)
	user, err := h.accounts.Authenticate(email, password)
	if err != nil {
		h.audit.Record(strings.ToLower(strings.TrimSpace(email)), services.ActionFailedLogin, ip, models.AuditFailed)
		return models.User{}, "", time.Time{}, err
	}

	token, expires, err := h.tokens.GenerateJWT(user)
	if err != nil {
		return models.User{}, "", time.Time{}, fmt.Errorf("generate token: %w", err)
	}
	h.audit.Record(user.ID, services.ActionLoginAttempt, ip, models.AuditSuccess)
	auth.SetCookie(w, token, expires, h.secure)

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User signed in")
	return user, token, expires, nil
}

// signOut clears the session cookie and records the logout when there was
// a session to end.
func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	if claims, err := auth.ClaimsFromContext(r.Context()); err == nil {
		h.audit.Record(claims.UserID, services.ActionLogout, clientIP(r), models.AuditSuccess)
	}
	auth.ClearCookie(w, h.secure)
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, expires, err := h.signIn(w, r, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		}
		writeServiceError(w, err, "Failed to sign in")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      user,
		Page:      views.Home(views.Session{User: &user}),
	})
}

// Logout ends the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.signOut(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// GetMe retrieves the currently authenticated user from the token.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	user, err := h.accounts.GetUserByID(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("User from token not found in DB")
		writeServiceError(w, err, "Failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
