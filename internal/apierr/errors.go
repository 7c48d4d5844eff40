package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kroma-network/zkvm-common/internal/filedb"
	"github.com/kroma-network/zkvm-common/internal/logger"
)

// ErrorCode represents a structured error code
type ErrorCode string

// Error code constants organized by category
const (
	// AUTH_ - Authentication errors on admin endpoints
	ErrAuthMissing ErrorCode = "AUTH_MISSING"
	ErrAuthInvalid ErrorCode = "AUTH_INVALID"

	// WITNESS_ - Witness store errors
	ErrWitnessNotFound    ErrorCode = "WITNESS_NOT_FOUND"
	ErrWitnessStoreFailed ErrorCode = "WITNESS_STORE_FAILED"

	// VALIDATION_ - Request validation errors
	ErrValidationInvalidHash     ErrorCode = "VALIDATION_INVALID_HASH"
	ErrValidationInvalidJSON     ErrorCode = "VALIDATION_INVALID_JSON"
	ErrValidationMissingField    ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrValidationPayloadTooLarge ErrorCode = "VALIDATION_PAYLOAD_TOO_LARGE"

	// SYSTEM_ - System and server errors
	ErrSystemInternal    ErrorCode = "SYSTEM_INTERNAL"
	ErrSystemUnavailable ErrorCode = "SYSTEM_UNAVAILABLE"

	// RATE_LIMIT_ - Rate limiting errors
	ErrRateLimitGlobal ErrorCode = "RATE_LIMIT_GLOBAL"
	ErrRateLimitIP     ErrorCode = "RATE_LIMIT_IP"
)

// Error represents a structured API error
type Error struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	status    int                    // HTTP status code (not serialized)
}

// ErrorResponse is the top-level error response wrapper
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// New creates a new API error
func New(code ErrorCode, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		status:  status,
	}
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// WithRequestID adds a request ID to the error
func (e *Error) WithRequestID(requestID string) *Error {
	e.RequestID = requestID
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Status returns the HTTP status code
func (e *Error) Status() int {
	return e.status
}

// WriteError writes a structured error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// Helper functions for common errors

// AuthMissing creates an authentication missing error
func AuthMissing(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return New(ErrAuthMissing, message, http.StatusUnauthorized)
}

// AuthInvalid creates an invalid authentication error
func AuthInvalid(message string) *Error {
	if message == "" {
		message = "Invalid authentication credentials"
	}
	return New(ErrAuthInvalid, message, http.StatusUnauthorized)
}

// WitnessNotFound creates a witness not found error
func WitnessNotFound(requestID string) *Error {
	return New(ErrWitnessNotFound, "No witness stored for the requested blocks", http.StatusNotFound).
		WithDetails(map[string]interface{}{"witness_request": requestID})
}

// WitnessStoreFailed creates a witness store failure error
func WitnessStoreFailed(message string) *Error {
	if message == "" {
		message = "Witness store operation failed"
	}
	return New(ErrWitnessStoreFailed, message, http.StatusInternalServerError)
}

// ValidationInvalidHash creates an invalid block hash error
func ValidationInvalidHash(field string) *Error {
	return New(ErrValidationInvalidHash, "Invalid block hash: "+field, http.StatusBadRequest).
		WithDetails(map[string]interface{}{"field": field})
}

// ValidationInvalidJSON creates an invalid JSON error
func ValidationInvalidJSON() *Error {
	return New(ErrValidationInvalidJSON, "Invalid JSON request body", http.StatusBadRequest)
}

// ValidationMissingField creates a missing field error
func ValidationMissingField(field string) *Error {
	return New(ErrValidationMissingField, "Missing required field: "+field, http.StatusBadRequest).
		WithDetails(map[string]interface{}{"field": field})
}

// ValidationPayloadTooLarge creates a payload size error
func ValidationPayloadTooLarge() *Error {
	return New(ErrValidationPayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge)
}

// SystemInternal creates an internal server error
func SystemInternal(message string) *Error {
	if message == "" {
		message = "Internal server error"
	}
	return New(ErrSystemInternal, message, http.StatusInternalServerError)
}

// SystemUnavailable creates a service unavailable error
func SystemUnavailable(message string) *Error {
	if message == "" {
		message = "Service unavailable"
	}
	return New(ErrSystemUnavailable, message, http.StatusServiceUnavailable)
}

// RateLimitGlobal creates a global rate limit error
func RateLimitGlobal() *Error {
	return New(ErrRateLimitGlobal, "Rate limit exceeded - too many requests globally", http.StatusTooManyRequests)
}

// RateLimitIP creates an IP rate limit error
func RateLimitIP() *Error {
	return New(ErrRateLimitIP, "Rate limit exceeded - too many requests from your IP", http.StatusTooManyRequests)
}

// FromStoreError maps a witness store failure to an API error. Serialization
// failures mean the request body wasn't valid JSON; everything else is an
// internal failure.
func FromStoreError(err error) *Error {
	var serr *filedb.SerializationError
	if errors.As(err, &serr) {
		return ValidationInvalidJSON()
	}
	return WitnessStoreFailed(err.Error())
}

// GetRequestID extracts the request ID from the context
func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// WriteErrorWithContext writes a structured error response with request ID from context
func WriteErrorWithContext(w http.ResponseWriter, r *http.Request, err *Error) {
	if reqID := GetRequestID(r.Context()); reqID != "" {
		err = err.WithRequestID(reqID)
	}
	WriteError(w, err)
}
