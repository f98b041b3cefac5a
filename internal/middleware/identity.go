package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "user_id"

// IdentityHeader names the header carrying the caller's user id.
const IdentityHeader = "X-User-ID"

// Identity resolves the caller from the identity header. When the header is
// absent and a fallback user is configured, the fallback is used; otherwise
// the request is rejected.
type Identity struct {
	fallback  string
	skipPaths map[string]bool
}

// NewIdentity creates an identity middleware. An empty fallback makes the
// header mandatory except on the listed paths.
func NewIdentity(fallback string, skipPaths ...string) *Identity {
	skip := make(map[string]bool)
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &Identity{fallback: strings.TrimSpace(fallback), skipPaths: skip}
}

// Handler returns the identity middleware handler.
func (m *Identity) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		userID := strings.TrimSpace(r.Header.Get(IdentityHeader))
		if userID == "" {
			userID = m.fallback
		}
		if userID == "" {
			http.Error(w, "missing "+IdentityHeader+" header", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID stores the caller's user id in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the caller's user id, or empty when unresolved.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}
