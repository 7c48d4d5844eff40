package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// brotliLevel trades ratio for speed. Witness payloads are large JSON
// blobs, so the middle of the range compresses well without hurting
// request latency.
const brotliLevel = 5

var (
	gzipPool = sync.Pool{
		New: func() interface{} {
			return gzip.NewWriter(io.Discard)
		},
	}
	brotliPool = sync.Pool{
		New: func() interface{} {
			return brotli.NewWriterLevel(io.Discard, brotliLevel)
		},
	}
)

// compressor is the subset of gzip.Writer and brotli.Writer we need.
type compressor interface {
	io.WriteCloser
	Reset(io.Writer)
}

type compressResponseWriter struct {
	http.ResponseWriter
	zw          compressor
	wroteHeader bool
	skip        bool
}

func (w *compressResponseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	// 204 and 304 responses carry no body, so encoding them would only
	// confuse caches.
	if code == http.StatusNoContent || code == http.StatusNotModified {
		w.skip = true
		w.Header().Del("Content-Encoding")
	} else {
		w.Header().Del("Content-Length")
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *compressResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.skip {
		return w.ResponseWriter.Write(b)
	}
	return w.zw.Write(b)
}

// Compress negotiates a content encoding from Accept-Encoding and wraps
// the response in the matching encoder. Brotli wins over gzip when the
// client offers both.
func Compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := negotiateEncoding(r.Header.Get("Accept-Encoding"))
		if enc == "" {
			next.ServeHTTP(w, r)
			return
		}

		var zw compressor
		switch enc {
		case "br":
			zw = brotliPool.Get().(*brotli.Writer)
			defer brotliPool.Put(zw)
		case "gzip":
			zw = gzipPool.Get().(*gzip.Writer)
			defer gzipPool.Put(zw)
		}
		zw.Reset(w)

		w.Header().Set("Content-Encoding", enc)
		w.Header().Add("Vary", "Accept-Encoding")

		crw := &compressResponseWriter{ResponseWriter: w, zw: zw}
		defer func() {
			if !crw.skip {
				zw.Close()
			}
		}()

		next.ServeHTTP(crw, r)
	})
}

// negotiateEncoding picks the encoding to apply. Quality values are
// ignored; clients that advertise an encoding are assumed to accept it.
func negotiateEncoding(acceptEncoding string) string {
	var gzipOK bool
	for _, part := range strings.Split(acceptEncoding, ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		switch strings.TrimSpace(name) {
		case "br":
			return "br"
		case "gzip":
			gzipOK = true
		}
	}
	if gzipOK {
		return "gzip"
	}
	return ""
}
