package transport

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type clientKey struct{}

// ClientResolver resolves a client name from a bearer token.
type ClientResolver interface {
	ResolveClient(ctx context.Context, token string) (string, error)
}

// StaticTokens resolves clients from a fixed token table.
type StaticTokens map[string]string

// ResolveClient implements ClientResolver.
func (s StaticTokens) ResolveClient(_ context.Context, token string) (string, error) {
	for known, client := range s {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return client, nil
		}
	}
	return "", ErrUnauthorized
}

// ClientFromContext returns the authenticated client name, if present.
func ClientFromContext(ctx context.Context) (string, bool) {
	client, ok := ctx.Value(clientKey{}).(string)
	return client, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver ClientResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			client, err := resolver.ResolveClient(r.Context(), token)
			if err != nil || client == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), clientKey{}, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
