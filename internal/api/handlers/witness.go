package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kroma-network/zkvm-common/internal/apierr"
	"github.com/kroma-network/zkvm-common/internal/errorreporting"
	"github.com/kroma-network/zkvm-common/internal/ident"
	"github.com/kroma-network/zkvm-common/internal/logger"
	"github.com/kroma-network/zkvm-common/internal/metrics"
	"github.com/kroma-network/zkvm-common/internal/respcache"
	"github.com/kroma-network/zkvm-common/internal/tracing"
)

// WitnessStore is the part of the store the witness endpoints use.
type WitnessStore interface {
	Set(key []byte, value any) error
	Get(key []byte, dest any) bool
	Remove(key []byte) error
}

// WitnessHandler serves PUT/GET/DELETE for witnesses keyed by the
// (l2_hash, l1_head_hash) pair in the URL.
type WitnessHandler struct {
	store    WitnessStore
	cache    respcache.Cache
	cacheTTL time.Duration
}

// NewWitnessHandler creates a witness handler backed by the given store
// and response cache.
func NewWitnessHandler(store WitnessStore, cache respcache.Cache, cacheTTL time.Duration) *WitnessHandler {
	return &WitnessHandler{store: store, cache: cache, cacheTTL: cacheTTL}
}

// witnessRequest carries the parsed identifiers of one request.
type witnessRequest struct {
	key       []byte
	cacheKey  string
	requestID string
}

// parseWitnessVars validates the path hashes. On failure it writes the
// error response and returns false.
func parseWitnessVars(w http.ResponseWriter, r *http.Request) (witnessRequest, bool) {
	vars := mux.Vars(r)
	rawL2 := vars["l2_hash"]
	rawL1 := vars["l1_head_hash"]

	l2, err := ident.ParseHash(rawL2)
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidHash("l2_hash"))
		return witnessRequest{}, false
	}
	l1, err := ident.ParseHash(rawL1)
	if err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidHash("l1_head_hash"))
		return witnessRequest{}, false
	}

	// The cache key is built from the parsed hashes, so 0x-prefixed and
	// bare spellings of the same pair share one cache entry.
	return witnessRequest{
		key:       ident.WitnessKey(l2, l1),
		cacheKey:  "witness:" + l2.String() + ":" + l1.String(),
		requestID: ident.RequestID(rawL2, rawL1),
	}, true
}

// Put stores a witness payload.
// PUT /api/witness/{l2_hash}/{l1_head_hash}
func (h *WitnessHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "witness.put")
	defer span.End()

	req, ok := parseWitnessVars(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("witness.request_id", req.requestID))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationPayloadTooLarge())
			return
		}
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidJSON())
		return
	}
	if len(body) == 0 {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationMissingField("body"))
		return
	}
	if !json.Valid(body) {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidJSON())
		return
	}

	if err := h.store.Set(req.key, json.RawMessage(body)); err != nil {
		logger.ErrorContext(ctx, "Failed to store witness",
			"request", req.requestID, "error", err)
		errorreporting.CaptureErrorWithContext(err,
			map[string]string{"operation": "witness.put"},
			map[string]interface{}{"request": req.requestID})
		apierr.WriteErrorWithContext(w, r, apierr.FromStoreError(err))
		return
	}

	h.cache.Delete(req.cacheKey)
	logger.InfoContext(ctx, "Witness stored",
		"request", req.requestID, "bytes", len(body))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":     "stored",
		"request_id": req.requestID,
	})
}

// Get returns a stored witness payload verbatim.
// GET /api/witness/{l2_hash}/{l1_head_hash}
func (h *WitnessHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "witness.get")
	defer span.End()

	req, ok := parseWitnessVars(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("witness.request_id", req.requestID))

	if body, ok := h.cache.Get(req.cacheKey); ok {
		metrics.ResponseCacheHits.WithLabelValues("witness").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Write(body)
		return
	}
	metrics.ResponseCacheMisses.WithLabelValues("witness").Inc()

	var payload json.RawMessage
	if !h.store.Get(req.key, &payload) {
		logger.DebugContext(ctx, "Witness not found", "request", req.requestID)
		apierr.WriteErrorWithContext(w, r, apierr.WitnessNotFound(req.requestID))
		return
	}

	h.cache.Set(req.cacheKey, payload, h.cacheTTL)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Write(payload)
}

// Delete removes a stored witness. Removing an absent witness succeeds.
// DELETE /api/witness/{l2_hash}/{l1_head_hash}
func (h *WitnessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "witness.delete")
	defer span.End()

	req, ok := parseWitnessVars(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("witness.request_id", req.requestID))

	if err := h.store.Remove(req.key); err != nil {
		logger.ErrorContext(ctx, "Failed to remove witness",
			"request", req.requestID, "error", err)
		errorreporting.CaptureErrorWithContext(err,
			map[string]string{"operation": "witness.delete"},
			map[string]interface{}{"request": req.requestID})
		apierr.WriteErrorWithContext(w, r, apierr.FromStoreError(err))
		return
	}

	h.cache.Delete(req.cacheKey)
	logger.InfoContext(ctx, "Witness removed", "request", req.requestID)

	w.WriteHeader(http.StatusNoContent)
}
