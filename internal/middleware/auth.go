package middleware

import (
	"net/http"
	"strings"

	"draftforge/internal/auth"
	"draftforge/internal/httputil"
)

// Auth validates bearer tokens when a verifier is configured. With a nil
// verifier every request passes through, which is how local development runs.
// Health and telemetry endpoints are always exempt.
func Auth(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil || exemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			subject, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, subject))
		})
	}
}

func exemptPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/debug/vars")
}
