package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vbndigital/culturapi/internal/attribution"
	"github.com/vbndigital/culturapi/internal/config"
	"github.com/vbndigital/culturapi/pkg/logging"
)

func newTestHandler(repo Repository) *Handler {
	svc := NewService(repo, attribution.NewMemoryStore(time.Hour), nil, nil, logging.Default(), config.EmailConsentLinked, "", time.Second)
	return NewHandler(svc, logging.Default())
}

func postLead(t *testing.T, h *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func TestSubmitHandler_Success(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository())

	w := postLead(t, h, SubmitLeadRequest{
		Name:            "Ana Silva",
		WhatsApp:        "86999998888",
		WhatsAppConsent: true,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success      bool   `json:"success"`
		Data         *Lead  `json:"data"`
		Message      string `json:"message"`
		WhatsAppLink string `json:"whatsapp_link"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Data == nil || resp.Data.ID == "" {
		t.Error("expected stored lead with id in data")
	}
	if resp.Data.WhatsApp != "5586999998888" {
		t.Errorf("expected normalized number, got %q", resp.Data.WhatsApp)
	}
	if !strings.Contains(resp.WhatsAppLink, "wa.me") {
		t.Errorf("expected wa.me deep link, got %q", resp.WhatsAppLink)
	}
}

func TestSubmitHandler_ValidationFailure(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository())

	w := postLead(t, h, SubmitLeadRequest{
		Name:     "A",
		WhatsApp: "123",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != msgInvalidForm {
		t.Errorf("unexpected error message %q", resp.Error)
	}
	for _, field := range []string{"name", "whatsapp", "whatsapp_consent"} {
		if resp.Details[field] == "" {
			t.Errorf("expected per-field message for %s, got %v", field, resp.Details)
		}
	}
}

func TestSubmitHandler_InvalidJSON(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.Submit(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

type brokenRepository struct{}

func (brokenRepository) Insert(ctx context.Context, lead *Lead) (*Lead, error) {
	return nil, &StorageError{Kind: StorageSchemaMissing, Err: errors.New(`relation "leads" does not exist`)}
}

func (brokenRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	return nil, &StorageError{Kind: StorageSchemaMissing, Err: errors.New(`relation "leads" does not exist`)}
}

func TestSubmitHandler_StorageFailureIsGeneric(t *testing.T) {
	h := newTestHandler(brokenRepository{})

	w := postLead(t, h, SubmitLeadRequest{
		Name:            "Ana Silva",
		WhatsApp:        "86999998888",
		WhatsAppConsent: true,
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "relation") || strings.Contains(body, "schema") {
		t.Errorf("storage sub-kind leaked to the user: %s", body)
	}
	if !strings.Contains(body, msgInternalError) {
		t.Errorf("expected generic error message, got %s", body)
	}
}

func TestAckHandler(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository())

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	w := httptest.NewRecorder()
	h.Ack(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] == "" {
		t.Error("expected acknowledgment message")
	}
	if _, ok := resp["supported_parameters"]; !ok {
		t.Error("expected supported_parameters list")
	}
	if _, ok := resp["data"]; ok {
		t.Error("ack endpoint must not return lead data")
	}
}
