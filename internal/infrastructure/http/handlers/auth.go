package handlers

import (
	"net/http"

	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/internal/infrastructure/http/response"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"go.uber.org/zap"
)

// AuthHandlers handles sign-up, sign-in and sign-out
type AuthHandlers struct {
	auth   inbound.AuthService
	logger *zap.Logger
}

// NewAuthHandlers creates a new authentication handlers instance
func NewAuthHandlers(auth inbound.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{auth: auth, logger: logger.Named("auth-handlers")}
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var creds user.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	session, err := h.auth.SignUp(r.Context(), creds)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusCreated, session, "Account created")
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds user.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	session, err := h.auth.SignIn(r.Context(), creds)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, session, "Signed in")
}

// SignOut handles POST /api/v1/auth/signout
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	if err := h.auth.SignOut(r.Context(), c); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, nil, "Signed out")
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	c, err := claims(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.OK(w, http.StatusOK, c.User, "")
}
