package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avieira/tourbase-be/internal/apperrors"
	"github.com/avieira/tourbase-be/internal/auth"
	"github.com/avieira/tourbase-be/internal/services"
)

// UserHandler handles the user profile surface: the /me routes and the
// admin-only account management group.
type UserHandler struct {
	users services.UserServiceProvider
	audit services.AuditServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider, audit services.AuditServiceProvider) *UserHandler {
	return &UserHandler{users: users, audit: audit}
}

// GetMe returns the authenticated user's own record.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("You are not logged in. Please log in to get access."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"user": user}})
}

// UpdateMe updates the authenticated user's name and email. Password data
// is rejected here; password changes go through /updateMyPassword.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("You are not logged in. Please log in to get access."))
		return
	}

	var payload struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if payload.Password != "" || payload.PasswordConfirm != "" {
		writeError(w, apperrors.BadRequest("This route is not for password updates. Please use /updateMyPassword."))
		return
	}

	if payload.Name == "" {
		payload.Name = current.Name
	}
	if payload.Email == "" {
		payload.Email = current.Email
	}

	user, err := h.users.UpdateProfile(current.ID, payload.Name, payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			writeError(w, apperrors.BadRequest("Please provide a valid email"))
		case errors.Is(err, services.ErrDuplicateEmail):
			writeError(w, apperrors.BadRequest("This email is already registered"))
		default:
			log.Error().Err(err).Str("user_id", current.ID).Msg("Failed to update profile")
			writeError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"user": user}})
}

// DeleteMe soft-deletes the authenticated user's account.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("You are not logged in. Please log in to get access."))
		return
	}

	if err := h.users.Deactivate(current.ID); err != nil {
		log.Error().Err(err).Str("user_id", current.ID).Msg("Failed to deactivate account")
		writeError(w, err)
		return
	}

	id := current.ID
	if err := h.audit.Record("account_deactivated", services.AuditInfo, "Account deactivated by owner", &id); err != nil {
		log.Warn().Err(err).Msg("Failed to record audit event")
	}

	w.WriteHeader(http.StatusNoContent)
}

// List returns all active users. Admin only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": len(users),
		"data":    map[string]interface{}{"users": users},
	})
}

// Get retrieves a user by ID. Admin only.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, apperrors.NotFound("No user found with that ID"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"user": user}})
}

// Delete soft-deletes a user by ID. Admin only.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.users.Deactivate(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, apperrors.NotFound("No user found with that ID"))
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to deactivate user")
		writeError(w, err)
		return
	}

	if err := h.audit.Record("account_deactivated", services.AuditInfo, "Account deactivated by admin", &id); err != nil {
		log.Warn().Err(err).Msg("Failed to record audit event")
	}

	w.WriteHeader(http.StatusNoContent)
}
