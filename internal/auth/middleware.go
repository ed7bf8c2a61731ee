package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/avieira/tourbase-be/internal/apperrors"
	"github.com/avieira/tourbase-be/internal/models"
)

// SessionCookieName is the cookie the session token is carried in when the
// Authorization header is absent.
const SessionCookieName = "jwt"

type contextKey string

const userContextKey = contextKey("currentUser")

// UserResolver resolves the token subject against the credential store.
// Soft-deleted and missing records must both come back as errors.
type UserResolver interface {
	GetByID(id string) (models.User, error)
}

// CurrentUser returns the authenticated identity attached to the request
// context, if any.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// WithUser attaches an authenticated identity to ctx. Exposed for handler
// tests; the middleware is the only production caller.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Protect creates a middleware that rejects unauthenticated requests.
func Protect(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, authErr := authenticate(tokens, users, r)
			if authErr != nil {
				apperrors.Write(w, authErr)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// IsLoggedIn runs the same pipeline as Protect but never rejects: on any
// failure the request simply continues unauthenticated. Used for
// optionally-personalized responses and request logging.
func IsLoggedIn(tokens *TokenService, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if extractToken(r) == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, authErr := authenticate(tokens, users, r)
			if authErr != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RestrictTo creates a middleware that only lets the listed roles through.
// It must be composed after Protect; it performs no authentication itself.
func RestrictTo(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				apperrors.Write(w, apperrors.Unauthorized("You are not logged in. Please log in to get access."))
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				apperrors.Write(w, apperrors.Forbidden("You do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate runs the full per-request pipeline: extract, verify,
// resolve the subject, and check token freshness against the last password
// change.
func authenticate(tokens *TokenService, users UserResolver, r *http.Request) (models.User, *apperrors.Error) {
	tokenStr := extractToken(r)
	if tokenStr == "" {
		return models.User{}, apperrors.Unauthorized("You are not logged in. Please log in to get access.")
	}

	claims, err := tokens.Verify(tokenStr)
	if err != nil {
		return models.User{}, apperrors.Unauthorized("Invalid or expired token. Please log in again.")
	}

	user, err := users.GetByID(claims.UserID)
	if err != nil {
		log.Debug().Str("user_id", claims.UserID).Msg("Token subject no longer resolves")
		return models.User{}, apperrors.Unauthorized("The user belonging to this token no longer exists.")
	}

	if claims.IssuedAt != nil && user.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return models.User{}, apperrors.Unauthorized("Password was recently changed. Please log in again.")
	}

	return user, nil
}

// extractToken takes the token from the Authorization header, falling back
// to the session cookie.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
