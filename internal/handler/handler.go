package handler

import (
	"encoding/json"
	"net/http"
)

// Handler carries the cross-cutting HTTP concerns: CORS and the health probe.
type Handler struct {
	serviceName string
	corsOrigin  string
}

func New(serviceName, corsOrigin string) *Handler {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Handler{serviceName: serviceName, corsOrigin: corsOrigin}
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		// Browsers reject credentials with a wildcard origin.
		if h.corsOrigin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NotFound answers unknown API routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Resource not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
