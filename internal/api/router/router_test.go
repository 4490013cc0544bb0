package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vbndigital/culturapi/internal/attribution"
	"github.com/vbndigital/culturapi/internal/config"
	"github.com/vbndigital/culturapi/internal/leads"
	"github.com/vbndigital/culturapi/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.Default()
	store := attribution.NewMemoryStore(time.Hour)
	repo := leads.NewInMemoryRepository()
	svc := leads.NewService(repo, store, nil, nil, logger, config.EmailConsentLinked, "", time.Second)

	return New(&Config{
		Logger:            logger,
		LeadsHandler:      leads.NewHandler(svc, logger),
		AttributionStore:  store,
		SessionCookieName: "test_session",
		SessionTTL:        time.Hour,
	})
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRouter_SubmitFlow(t *testing.T) {
	r := newTestRouter(t)

	body, _ := json.Marshal(leads.SubmitLeadRequest{
		Name:            "Ana Silva",
		WhatsApp:        "86999998888",
		WhatsAppConsent: true,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouter_AckEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRouter_AdminDisabledWithoutSecret(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/leads", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when admin auth is unconfigured, got %d", w.Code)
	}
}

func TestRouter_AttributionAcrossRequests(t *testing.T) {
	r := newTestRouter(t)

	// Page view with UTM parameters establishes the session.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/health?utm_source=ig&utm_campaign=promo", nil))
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	// Submission from a clean URL in the same session.
	body, _ := json.Marshal(leads.SubmitLeadRequest{
		Name:            "Ana Silva",
		WhatsApp:        "86999998888",
		WhatsAppConsent: true,
	})
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/leads", bytes.NewReader(body))
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data *leads.Lead `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.UTMSource != "ig" {
		t.Errorf("expected session attribution on stored lead, got utm_source=%q", resp.Data.UTMSource)
	}
	if resp.Data.UTMCampaign != "promo" {
		t.Errorf("expected utm_campaign=promo, got %q", resp.Data.UTMCampaign)
	}
}
