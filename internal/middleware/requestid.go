package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/kroma-network/zkvm-common/internal/logger"
)

// RequestIDHeader is the header used to propagate request IDs between services.
const RequestIDHeader = "X-Request-ID"

// maxInboundIDLen bounds how much of a caller-supplied request ID we accept.
const maxInboundIDLen = 64

// RequestID attaches a request ID to every request. An inbound X-Request-ID
// is honored so IDs stay stable across the proposer, the prover and this
// store; otherwise a fresh one is generated. The ID is stored on the request
// context under logger.RequestIDKey and echoed back in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxInboundIDLen {
			requestID = generateRequestID()
		}

		ctx := context.WithValue(r.Context(), logger.RequestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// generateRequestID returns a 32-char hex ID from 16 random bytes.
func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; a timestamp
		// keeps IDs distinguishable if it ever happens here.
		return fmt.Sprintf("t-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
