package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/studio/backend/internal/model"
	"github.com/studio/backend/internal/repository"
	"github.com/studio/backend/internal/service"
)

// ---------------------------------------------------------------------------
// Mock ContactService
// ---------------------------------------------------------------------------

type mockContactService struct {
	submitFunc   func(ctx context.Context, sub service.Submission) (*model.Contact, error)
	listFunc     func(ctx context.Context) ([]*model.Contact, error)
	markReadFunc func(ctx context.Context, id int) (*model.Contact, error)
}

func (m *mockContactService) Submit(ctx context.Context, sub service.Submission) (*model.Contact, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, sub)
	}
	return &model.Contact{ID: 1, Name: sub.Name, Email: sub.Email, Message: sub.Message}, nil
}

func (m *mockContactService) List(ctx context.Context) ([]*model.Contact, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*model.Contact{}, nil
}

func (m *mockContactService) MarkRead(ctx context.Context, id int) (*model.Contact, error) {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Error   string           `json:"error"`
	Data    []*model.Contact `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// ---------------------------------------------------------------------------
// POST /api/contact tests
// ---------------------------------------------------------------------------

func TestContactHandler_Submit_Success(t *testing.T) {
	var captured service.Submission
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, sub service.Submission) (*model.Contact, error) {
			captured = sub
			return &model.Contact{ID: 1, Name: sub.Name, Email: sub.Email, Message: sub.Message}, nil
		},
	}
	h := NewContactHandler(mock)

	body := `{"name":"Ada","email":"ada@x.com","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if captured != (service.Submission{Name: "Ada", Email: "ada@x.com", Message: "hi"}) {
		t.Errorf("unexpected submission forwarded: %+v", captured)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success || resp.Message != "Contact saved successfully" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestContactHandler_Submit_ValidationError(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, sub service.Submission) (*model.Contact, error) {
			return nil, &service.ValidationError{Fields: []string{"email"}}
		},
	}
	h := NewContactHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Ada","message":"hi"}`))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success || resp.Error != "Missing required fields" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestContactHandler_Submit_EmptyBody(t *testing.T) {
	h := NewContactHandler(service.NewContactService(repository.NewMemoryContactRepository()))

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(""))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty body, got %d", rec.Code)
	}
}

func TestContactHandler_Submit_InvalidJSON(t *testing.T) {
	h := NewContactHandler(&mockContactService{})

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("{bad json"))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestContactHandler_Submit_TrailingData(t *testing.T) {
	called := false
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, sub service.Submission) (*model.Contact, error) {
			called = true
			return &model.Contact{ID: 1}, nil
		},
	}
	h := NewContactHandler(mock)

	valid := `{"name":"Ada","email":"ada@x.com","message":"hi"}`
	for _, body := range []string{valid + " trailing garbage", valid + `{"name":"x"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Submit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
	if called {
		t.Error("service must not be called when the body has trailing data")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(valid+"\n"))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("trailing whitespace should be accepted, got %d", rec.Code)
	}
}

func TestContactHandler_Submit_BodyTooLarge(t *testing.T) {
	h := NewContactHandler(&mockContactService{})

	body := `{"name":"Ada","email":"ada@x.com","message":"` + strings.Repeat("x", 256) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	MaxBody(64)(http.HandlerFunc(h.Submit)).ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestContactHandler_Submit_ServiceError(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, sub service.Submission) (*model.Contact, error) {
			return nil, errors.New("parse contacts.json: unexpected end of JSON input")
		},
	}
	h := NewContactHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"a","email":"b","message":"c"}`))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on service error, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error != "parse contacts.json: unexpected end of JSON input" {
		t.Errorf("expected error text echoed, got %q", resp.Error)
	}
}

// ---------------------------------------------------------------------------
// GET /api/contacts tests
// ---------------------------------------------------------------------------

func TestContactHandler_List_Success(t *testing.T) {
	mock := &mockContactService{
		listFunc: func(ctx context.Context) ([]*model.Contact, error) {
			return []*model.Contact{
				{ID: 1, Name: "Ada", Email: "ada@x.com", Message: "hi"},
				{ID: 2, Name: "Grace", Email: "grace@x.com", Message: "yo", Read: true},
			}, nil
		},
	}
	h := NewContactHandler(mock)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success || len(resp.Data) != 2 {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if resp.Data[1].Name != "Grace" || !resp.Data[1].Read {
		t.Errorf("unexpected second record: %+v", resp.Data[1])
	}
}

func TestContactHandler_List_EmptyIsArray(t *testing.T) {
	h := NewContactHandler(&mockContactService{})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("expected empty data array, got %s", rec.Body.String())
	}
}

func TestContactHandler_List_ServiceError(t *testing.T) {
	mock := &mockContactService{
		listFunc: func(ctx context.Context) ([]*model.Contact, error) {
			return nil, errors.New("read contacts.json: permission denied")
		},
	}
	h := NewContactHandler(mock)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Error != "read contacts.json: permission denied" {
		t.Errorf("expected error text echoed, got %q", resp.Error)
	}
}

// ---------------------------------------------------------------------------
// PUT /api/contacts/{id}/read tests
// ---------------------------------------------------------------------------

func markReadRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/contacts/"+id+"/read", nil)
	req.SetPathValue("id", id)
	return req
}

func TestContactHandler_MarkRead_Success(t *testing.T) {
	var capturedID int
	mock := &mockContactService{
		markReadFunc: func(ctx context.Context, id int) (*model.Contact, error) {
			capturedID = id
			return &model.Contact{ID: id, Read: true}, nil
		},
	}
	h := NewContactHandler(mock)

	rec := httptest.NewRecorder()
	h.MarkRead(rec, markReadRequest("7"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if capturedID != 7 {
		t.Errorf("expected id 7 forwarded, got %d", capturedID)
	}
	if resp := decodeEnvelope(t, rec); !resp.Success || resp.Message != "Contact marked as read" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestContactHandler_MarkRead_NotFound(t *testing.T) {
	h := NewContactHandler(&mockContactService{})

	rec := httptest.NewRecorder()
	h.MarkRead(rec, markReadRequest("1"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success || resp.Error != "Contact not found" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestContactHandler_MarkRead_NonNumericID(t *testing.T) {
	called := false
	mock := &mockContactService{
		markReadFunc: func(ctx context.Context, id int) (*model.Contact, error) {
			called = true
			return nil, nil
		},
	}
	h := NewContactHandler(mock)

	for _, id := range []string{"abc", "-1", "+1", "1.5", "1e3", ""} {
		rec := httptest.NewRecorder()
		h.MarkRead(rec, markReadRequest(id))
		if rec.Code != http.StatusNotFound {
			t.Errorf("id %q: expected 404, got %d", id, rec.Code)
		}
	}
	if called {
		t.Error("service must not be called for malformed ids")
	}
}

func TestContactHandler_MarkRead_ServiceError(t *testing.T) {
	mock := &mockContactService{
		markReadFunc: func(ctx context.Context, id int) (*model.Contact, error) {
			return nil, errors.New("disk full")
		},
	}
	h := NewContactHandler(mock)

	rec := httptest.NewRecorder()
	h.MarkRead(rec, markReadRequest("1"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
