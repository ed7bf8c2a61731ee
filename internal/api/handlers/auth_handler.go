package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avieira/tourbase-be/internal/apperrors"
	"github.com/avieira/tourbase-be/internal/auth"
	"github.com/avieira/tourbase-be/internal/config"
	"github.com/avieira/tourbase-be/internal/mailer"
	"github.com/avieira/tourbase-be/internal/models"
	"github.com/avieira/tourbase-be/internal/services"
)

// AuthHandler orchestrates the credential lifecycle: signup, login, logout,
// forgot/reset password, and authenticated password changes.
type AuthHandler struct {
	users  services.UserServiceProvider
	audit  services.AuditServiceProvider
	tokens *auth.TokenService
	hasher *auth.PasswordHasher
	mail   mailer.Mailer
	cfg    *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, audit services.AuditServiceProvider, tokens *auth.TokenService, hasher *auth.PasswordHasher, mail mailer.Mailer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, audit: audit, tokens: tokens, hasher: hasher, mail: mail, cfg: cfg}
}

// SignupPayload defines the structure for signup requests.
type SignupPayload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles new user registration. The welcome email is best-effort:
// the account is kept even if delivery fails.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if payload.Name == "" || payload.Email == "" || payload.Password == "" || payload.PasswordConfirm == "" {
		writeError(w, apperrors.BadRequest("Please provide name, email, password and passwordConfirm"))
		return
	}
	if payload.Password != payload.PasswordConfirm {
		writeError(w, apperrors.BadRequest("Passwords are not the same!"))
		return
	}

	user, err := h.users.Create(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			writeError(w, apperrors.BadRequest("Please provide a valid email"))
		case errors.Is(err, services.ErrPasswordTooShort):
			writeError(w, apperrors.BadRequest("Password must be at least 8 characters"))
		case errors.Is(err, services.ErrDuplicateEmail):
			writeError(w, apperrors.BadRequest("This email is already registered"))
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to create user")
			writeError(w, err)
		}
		return
	}

	h.recordAudit("signup", services.AuditInfo, "New account created", user.ID)

	if err := h.mail.SendWelcome(user.Email, user.Name, h.cfg.PublicBaseURL+"/me"); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Welcome email delivery failed")
	}

	h.sendToken(w, user, http.StatusCreated)
}

// Login authenticates a user and issues a session token. A missing record
// and a wrong password produce the identical response so the endpoint does
// not leak which emails are registered.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if payload.Email == "" || payload.Password == "" {
		writeError(w, apperrors.BadRequest("Please provide email and password!"))
		return
	}

	user, err := h.users.GetByEmailWithPassword(payload.Email)
	if err != nil || !h.hasher.Verify(r.Context(), payload.Password, user.PasswordHash) {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		h.recordAudit("login_failed", services.AuditWarning, "Failed authentication attempt", "")
		writeError(w, apperrors.Unauthorized("Incorrect email or password!"))
		return
	}

	h.recordAudit("login", services.AuditInfo, "Successful login", user.ID)
	h.sendToken(w, user, http.StatusOK)
}

// Logout clears the session cookie. Tokens are stateless, so there is no
// server-side revocation; an issued token stays valid until expiry or a
// password change.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "loggedout",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	writeJSON(w, http.StatusOK, nil)
}

// ForgotPassword issues a reset token and emails its cleartext form. If
// delivery fails the token fields are rolled back: a persisted capability
// nobody received is pure attack surface.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByEmail(payload.Email)
	if err != nil {
		writeError(w, apperrors.NotFound("There is no user with that email address"))
		return
	}

	cleartext, digest, expires, err := h.tokens.NewResetToken()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.SetResetToken(user.ID, digest, expires); err != nil {
		writeError(w, err)
		return
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", h.cfg.PublicBaseURL, cleartext)
	if err := h.mail.SendPasswordReset(user.Email, user.Name, resetURL); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Password reset email delivery failed")
		if clearErr := h.users.ClearResetToken(user.ID); clearErr != nil {
			log.Error().Err(clearErr).Str("user_id", user.ID).Msg("Failed to roll back reset token")
		}
		writeError(w, apperrors.Internal("There was an error sending the email. Please try again later!"))
		return
	}

	h.recordAudit("password_reset_requested", services.AuditInfo, "Password reset token issued", user.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Token sent to email!"})
}

// ResetPassword redeems a reset token and sets a new password. Redemption
// clears the stored digest, so a token can be used at most once.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	digest := auth.HashResetToken(chi.URLParam(r, "token"))
	user, err := h.users.FindByResetToken(digest)
	if err != nil {
		writeError(w, apperrors.BadRequest("Token is invalid or has expired"))
		return
	}

	if appErr := validatePasswordPair(payload.Password, payload.PasswordConfirm); appErr != nil {
		writeError(w, appErr)
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user.ID, payload.Password); err != nil {
		writeError(w, err)
		return
	}

	h.recordAudit("password_reset", services.AuditInfo, "Password reset via token", user.ID)
	h.sendToken(w, user, http.StatusOK)
}

// UpdateMyPassword changes the password of the authenticated user. Proof of
// the current password is required even with a valid session.
func (h *AuthHandler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeError(w, apperrors.Unauthorized("You are not logged in. Please log in to get access."))
		return
	}

	var payload struct {
		PasswordCurrent string `json:"passwordCurrent"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByIDWithPassword(current.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.hasher.Verify(r.Context(), payload.PasswordCurrent, user.PasswordHash) {
		writeError(w, apperrors.Unauthorized("Your current password is wrong"))
		return
	}

	if appErr := validatePasswordPair(payload.Password, payload.PasswordConfirm); appErr != nil {
		writeError(w, appErr)
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user.ID, payload.Password); err != nil {
		writeError(w, err)
		return
	}

	h.recordAudit("password_changed", services.AuditInfo, "Password changed", user.ID)
	h.sendToken(w, user, http.StatusOK)
}

// sendToken issues a session token and delivers it both in the body and as
// an httpOnly cookie.
func (h *AuthHandler) sendToken(w http.ResponseWriter, user models.User, status int) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to sign session token")
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.JWTCookieExpiresIn),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	user.PasswordHash = ""
	writeJSON(w, status, map[string]interface{}{
		"token": token,
		"data":  map[string]interface{}{"user": user},
	})
}

func (h *AuthHandler) recordAudit(eventType, level, message, userID string) {
	var id *string
	if userID != "" {
		id = &userID
	}
	if err := h.audit.Record(eventType, level, message, id); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record audit event")
	}
}

func validatePasswordPair(password, confirm string) *apperrors.Error {
	if password == "" || confirm == "" {
		return apperrors.BadRequest("Please provide password and passwordConfirm")
	}
	if password != confirm {
		return apperrors.BadRequest("Passwords are not the same!")
	}
	if len(password) < 8 {
		return apperrors.BadRequest("Password must be at least 8 characters")
	}
	return nil
}
