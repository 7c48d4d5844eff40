package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/kroma-network/zkvm-common/internal/apierr"
	"github.com/kroma-network/zkvm-common/internal/errorreporting"
	"github.com/kroma-network/zkvm-common/internal/logger"
)

// Recover converts panics in downstream handlers into 500 responses.
// The panic value and stack are logged and, when Sentry is configured,
// reported with the request attached to the event scope.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()

				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", fmt.Sprintf("%v", rec),
					"path", r.URL.Path,
					"method", r.Method,
					"stack", string(stack),
				)

				if errorreporting.IsSentryEnabled() {
					hub := sentry.CurrentHub().Clone()
					hub.WithScope(func(scope *sentry.Scope) {
						scope.SetRequest(r)
						scope.SetLevel(sentry.LevelFatal)
						scope.SetTag("handler", r.URL.Path)
						if err, ok := rec.(error); ok {
							hub.CaptureException(err)
						} else {
							hub.CaptureMessage(errorreporting.ScrubPII(fmt.Sprintf("panic: %v", rec)))
						}
					})
				}

				apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("internal server error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
