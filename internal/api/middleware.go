package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"net/http"
	"strings"
)

// AdminAuth protects the /admin/api surface with a single operator token.
//
// Contract:
// - Caller sends "Authorization: Bearer <ADMIN_API_TOKEN>".
// - Missing credentials are 401, a wrong token is 403.
// - An empty configured token locks the admin surface entirely; there is
//   no unauthenticated fallback.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing admin token")
				return
			}
			given := strings.TrimSpace(authz[7:])
			if token == "" || !tokenEqual(given, token) {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "invalid admin token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), "admin")))
		})
	}
}

// tokenEqual compares through sha256 digests so the comparison is
// constant-time regardless of token length.
func tokenEqual(a, b string) bool {
	da := sha256.Sum256([]byte(a))
	db := sha256.Sum256([]byte(b))
	return hmac.Equal(da[:], db[:])
}
