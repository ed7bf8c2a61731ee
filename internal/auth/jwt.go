package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// ErrInvalidToken is returned for any token that cannot be accepted:
// malformed, expired, or carrying a bad signature. The cause only matters
// for logging; callers treat all of them as "not authenticated".
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims defines the JWT claims structure for session tokens.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies stateless session tokens and mints
// single-use password-reset tokens. The signing secret and lifetimes are
// injected at construction; there are no package-level secrets.
type TokenService struct {
	secret   []byte
	expiry   time.Duration
	resetTTL time.Duration
}

// NewTokenService creates a TokenService.
func NewTokenService(secret string, expiry, resetTTL time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		expiry:   expiry,
		resetTTL: resetTTL,
	}
}

// Issue creates a new signed session token for the given user.
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a session token string.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		log.Debug().Err(err).Msg("Session token rejected")
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Expiry returns the configured session token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}
