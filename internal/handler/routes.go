package handler

import "net/http"

// NewRouter registers the API routes and the static site on one mux.
func NewRouter(h *Handler, contacts *ContactHandler, static http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/contact", contacts.Submit)
	mux.HandleFunc("GET /api/contacts", contacts.List)
	mux.HandleFunc("PUT /api/contacts/{id}/read", contacts.MarkRead)
	mux.HandleFunc("/api/", NotFound)
	mux.Handle("/", static)
	return mux
}
