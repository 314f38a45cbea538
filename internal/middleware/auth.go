// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/conorls/dublinrent/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// TokenResolver maps a bearer token to the identity it was issued for.
type TokenResolver interface {
	Lookup(token string) (models.Identity, bool)
}

// bearerToken extracts the token from the Authorization header, or ""
// when the header is absent or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireBearer rejects requests without a valid bearer token. On
// success the resolved identity is stored in the request context.
func RequireBearer(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, `{"detail":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}
			identity, ok := resolver.Lookup(token)
			if !ok {
				http.Error(w, `{"detail":"Could not validate credentials"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalBearer resolves a bearer token when one is presented but lets
// anonymous requests through. An invalid token is treated as anonymous.
func OptionalBearer(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if identity, ok := resolver.Lookup(token); ok {
					ctx := context.WithValue(r.Context(), identityKey, identity)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext extracts the authenticated identity from the
// request context. ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}
