package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values this middleware stores.
type contextKey string

const emailKey contextKey = "email"

// RequireAuth enforces authentication on protected routes.
//
// It reads the bearer token from the Authorization header, verifies it, and
// stores the verified email in the request context. The gate is
// route-declared: each protected route opts in, public read routes stay
// unauthenticated.
//
// Two failure modes, both 401:
//   - no Authorization header at all, rejected before the token service is
//     ever consulted
//   - present but malformed, expired, or signed with a different secret
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w, "no token provided")
				return
			}

			email, err := tokens.Verify(raw)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext retrieves the authenticated caller's email from the
// request context. Returns ("", false) if the request did not pass through
// RequireAuth.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

// bearerToken extracts the token from the Authorization header. The "Bearer"
// scheme prefix is accepted case-insensitively; a bare token is accepted too.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// unauthorized writes the 401 in the same {"message": ...} shape the
// handlers use, so clients see one error contract everywhere.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
