package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/renshuapp/renshu-api/internal/api/shared"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature or
	// claim validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for structurally valid but expired
	// tokens.
	ErrExpiredToken = errors.New("expired token")
)

// AuthMiddleware verifies bearer tokens issued by the external identity
// service. This API never mints tokens; it only checks the signature
// and extracts the subject as the user ID.
type AuthMiddleware struct {
	secret []byte
	logger *slog.Logger
}

// NewAuthMiddleware creates an AuthMiddleware validating HS256 tokens
// signed with the given secret.
func NewAuthMiddleware(jwtSecret string, log *slog.Logger) *AuthMiddleware {
	if jwtSecret == "" {
		panic("jwtSecret cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{
		secret: []byte(jwtSecret),
		logger: log.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the Authorization header and adds the user ID
// to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		userID, err := m.validateToken(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			default:
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateToken checks signature, expiry, and subject of one token and
// returns the user ID it carries.
func (m *AuthMiddleware) validateToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return uuid.Nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user ID", ErrInvalidToken)
	}
	return userID, nil
}

// AuthenticateOptional attaches the user ID when a valid token is
// present and otherwise lets the request through anonymously. Used for
// read-only endpoints that degrade to empty data without a user.
func (m *AuthMiddleware) AuthenticateOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if userID, err := m.validateToken(parts[1]); err == nil {
				ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts the user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// SignTestToken mints a short-lived HS256 token for the given user.
// Exported for handler and middleware tests; production tokens come
// from the identity service.
func SignTestToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
