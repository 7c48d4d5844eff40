package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/kroma-network/zkvm-common/internal/apierr"
	"github.com/kroma-network/zkvm-common/internal/logger"
)

// RequireBearer gates a route group behind a static bearer token. With no
// token configured the gated routes are disabled rather than left open.
func RequireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				apierr.WriteErrorWithContext(w, r, apierr.SystemUnavailable("admin API is not configured"))
				return
			}

			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				apierr.WriteErrorWithContext(w, r, apierr.AuthMissing("missing bearer token"))
				return
			}

			presented := strings.TrimPrefix(auth, prefix)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logger.WarnContext(r.Context(), "rejected admin request", "ip", clientIP(r), "path", r.URL.Path)
				apierr.WriteErrorWithContext(w, r, apierr.AuthInvalid("invalid bearer token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
