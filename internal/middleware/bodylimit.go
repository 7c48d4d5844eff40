package middleware

import "net/http"

// MaxBody caps request body size for mutating methods. Oversized bodies
// make reads past the limit fail with a *http.MaxBytesError, which the
// handlers translate into a validation error.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
