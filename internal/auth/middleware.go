package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/authflow/internal/httputil"
	"github.com/redmonkez12/authflow/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const IdentityContextKey ContextKey = "identity"

// Authenticator resolves a session token to an identity; *Service implements it
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	authenticator Authenticator
	cookieName    string
}

func NewMiddleware(authenticator Authenticator, cookieName string) *Middleware {
	return &Middleware{authenticator: authenticator, cookieName: cookieName}
}

// RequireAuth resolves the caller from the session cookie (or a Bearer header)
// and passes the identity to the next handler through the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, ok := m.extractToken(r)
		if !ok {
			httputil.RespondError(w, "Unauthorized - no token provided", http.StatusUnauthorized)
			return
		}

		identity, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrExpiredToken):
				httputil.RespondError(w, "Unauthorized - token expired", http.StatusUnauthorized)
			case errors.Is(err, ErrInvalidToken):
				httputil.RespondError(w, "Unauthorized - invalid token", http.StatusUnauthorized)
			default:
				logger.Error("session lookup failed", "error", err.Error())
				httputil.RespondError(w, "Server error", http.StatusInternalServerError)
			}
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) extractToken(r *http.Request) (string, bool) {
	if token, err := GetSessionTokenFromCookie(r, m.cookieName); err == nil {
		return token, true
	}

	authHeader := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(authHeader, "Bearer "); found && strings.TrimSpace(after) != "" {
		return strings.TrimSpace(after), true
	}

	return "", false
}

// GetIdentityFromContext extracts the identity set by RequireAuth
func GetIdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*Identity)
	return identity, ok && identity != nil
}

// GetAccountIDFromContext extracts the authenticated account ID
func GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	identity, ok := GetIdentityFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return identity.AccountID, true
}
