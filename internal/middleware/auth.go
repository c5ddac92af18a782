package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"bruce/internal/auth"
	"bruce/internal/httputil"
)

// OptionalAuth verifies a bearer token when one is sent and stores the
// token's email in the request context. A token that is malformed or fails
// verification is ignored and the request continues anonymously.
// A nil verifier disables the middleware.
func OptionalAuth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				logger.Debug("ignoring non-bearer authorization header", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("ignoring unverified bearer token", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, httputil.WithUserEmail(r, claims.Email))
		})
	}
}
