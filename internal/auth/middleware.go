package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"
)

type contextKey struct{}

// Middleware admits requests carrying a valid token whose role is one of
// roles. With no roles, any valid token is enough.
//
// The token is read from the Authorization bearer header, or from the
// access_token query parameter for EventSource streams, which cannot set
// headers.
func Middleware(iss *Issuer, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				deny(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			claims, err := iss.Verify(token)
			if err != nil {
				deny(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				deny(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, claims)))
		})
	}
}

// GetUser returns the claims Middleware stored on ctx, or nil.
func GetUser(ctx context.Context) *Claims {
	claims, _ := ctx.Value(contextKey{}).(*Claims)
	return claims
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
