package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/studio/backend/internal/repository"
	"github.com/studio/backend/internal/service"
)

// ContactHandler handles contact form submission, listing and mark-read.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

var errTrailingData = errors.New("unexpected data after JSON body")

// apiResponse is the envelope shared by the contact endpoints.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Error: msg})
}

// Submit handles POST /api/contact.
// name, email and message are all required and must be non-empty.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context())

	var sub service.Submission
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&sub)
	if err == nil {
		// A second value after the object means the body is not one JSON document.
		if _, tokErr := dec.Token(); !errors.Is(tokErr, io.EOF) {
			err = tokErr
			if err == nil {
				err = errTrailingData
			}
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	c, err := h.contactService.Submit(r.Context(), sub)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		logger.Error("error processing contact", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("contact received", "id", c.ID, "name", c.Name, "email", c.Email)
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Message: "Contact saved successfully"})
}

// List handles GET /api/contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.List(r.Context())
	if err != nil {
		LoggerFromContext(r.Context()).Error("list contacts failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: contacts})
}

// MarkRead handles PUT /api/contacts/{id}/read.
// Non-numeric ids are treated as an unknown route.
func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		NotFound(w, r)
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		NotFound(w, r)
		return
	}

	if _, err := h.contactService.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Contact not found")
			return
		}
		LoggerFromContext(r.Context()).Error("mark contact read failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Contact marked as read"})
}
