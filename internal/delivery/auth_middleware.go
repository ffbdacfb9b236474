package delivery

import (
	"context"
	"net/http"
	"strings"

	"github.com/Vovarama1992/voxbridge/internal/ports"
)

type ctxKey int

const userIDKey ctxKey = iota

// IdentityMiddleware attaches the caller's user id when the request carries a
// valid bearer token. Requests without one pass through anonymously.
func IdentityMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if auth == nil || !strings.HasPrefix(h, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(h, "Bearer ")
			if id, ok := auth.UserID(r.Context(), token); ok {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, id))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFrom(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFrom returns the authenticated user id, or nil for anonymous callers.
func UserIDFrom(ctx context.Context) *int64 {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return nil
	}
	return &id
}
