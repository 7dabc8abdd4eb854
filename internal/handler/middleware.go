package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/crewjam/csp"
)

var contentSecurityPolicy = csp.Header{
	DefaultSrc: []string{"'self'"},
}.String() + "; frame-ancestors 'none'"

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		next.ServeHTTP(w, r)
	})
}

// MaxBody caps request bodies at limit bytes. Reads past the cap fail with
// *http.MaxBytesError. A non-positive limit disables the cap.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// Recover turns a panic in next into a 500 with a JSON error body. Panics with
// http.ErrAbortHandler are re-raised so the server aborts the response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			LoggerFromContext(r.Context()).Error("panic serving request",
				"path", r.URL.Path,
				"panic", fmt.Sprint(rec),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}()
		next.ServeHTTP(w, r)
	})
}
