package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antojitos/comanda/internal/service"
	"github.com/antojitos/comanda/internal/server/middleware"
	"github.com/antojitos/comanda/internal/store"
)

// AdminHandler serves administrator session management plus the admin-only
// account listing and deletion endpoints.
type AdminHandler struct {
	store  *store.Store
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(st *store.Store, auth *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: st, auth: auth, logger: logger}
}

type loginRequest struct {
	AccountName     string `json:"account_name"`
	AccountPassword string `json:"account_password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login authenticates an administrator.
// POST /administrators/login
//
// 200 with a fresh session token; 401 on bad credentials; 403 with the
// remaining lockout minutes while the account is blocked; 500 when the
// store itself fails.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountName == "" || req.AccountPassword == "" {
		writeError(w, http.StatusBadRequest, "Account name and password are required")
		return
	}

	token, err := h.auth.Login(r.Context(), req.AccountName, req.AccountPassword, middleware.BearerToken(r))
	if err != nil {
		var locked *service.AccountLockedError
		switch {
		case errors.As(err, &locked):
			writeError(w, http.StatusForbidden, locked.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			h.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Authentication error")
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, Message: "Login successful"})
}

// Logout places the presented session token on the revocation ledger.
// POST /administrators/logout
//
// Works for expired tokens too; the only rejections are a missing bearer
// header (401) and a token without an administrator claim (400).
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			writeError(w, http.StatusBadRequest, "Invalid token")
			return
		}
		h.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to revoke token")
		return
	}

	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// List returns all administrator accounts (public columns only).
// GET /administrators
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.store.ListAdministrators(r.Context())
	if err != nil {
		h.logger.Error("list administrators failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching administrators")
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

// Delete removes an administrator account.
// DELETE /administrators/delete/{admin_code}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	adminCode := chi.URLParam(r, "admin_code")
	if err := h.store.DeleteAdministrator(r.Context(), adminCode); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Administrator not found")
			return
		}
		h.logger.Error("delete administrator failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error deleting administrator")
		return
	}
	writeMessage(w, http.StatusOK, "Administrator deleted successfully")
}
