package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/vbndigital/culturapi/pkg/logging"
)

var leadColumnNames = []string{
	"id", "name", "email", "whatsapp", "age_group", "course_interest", "message",
	"email_consent", "whatsapp_consent", "utm_source", "utm_medium", "utm_campaign",
	"utm_content", "url_referrer", "created_at",
}

func sampleRows() *sqlmock.Rows {
	return sqlmock.NewRows(leadColumnNames).AddRow(
		"id-1", "Ana Silva", "ana@example.com", "5586999998888", "Não especificado",
		"conversacao", "", true, true, "ig", "social", "volta-as-aulas", "", "", time.Now().UTC(),
	)
}

func TestListLeads(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM leads(.+)ORDER BY created_at DESC`).
		WithArgs(20, 0).
		WillReturnRows(sampleRows())

	h := NewAdminLeadsHandler(db, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
	w := httptest.NewRecorder()
	h.ListLeads(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp LeadsListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Leads) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Leads[0].Name != "Ana Silva" {
		t.Errorf("unexpected lead: %+v", resp.Leads[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListLeads_Filtered(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE 1=1 AND course_interest = \$1`).
		WithArgs("conversacao").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM leads WHERE 1=1 AND course_interest = \$1`).
		WithArgs("conversacao", 20, 0).
		WillReturnRows(sampleRows())

	h := NewAdminLeadsHandler(db, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/leads?course_interest=conversacao", nil)
	w := httptest.NewRecorder()
	h.ListLeads(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM leads`).WillReturnRows(sampleRows())

	h := NewAdminLeadsHandler(db, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/leads/export", nil)
	w := httptest.NewRecorder()
	h.ExportCSV(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected CSV content type, got %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Ana Silva") {
		t.Errorf("expected lead row in CSV, got %s", body)
	}
	if !strings.Contains(body, "(86) 99999-8888") {
		t.Errorf("expected display-formatted number in CSV, got %s", body)
	}
}

func TestStats(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE created_at >= \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE created_at >= \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads WHERE utm_source`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))
	mock.ExpectQuery(`SELECT utm_source, COUNT\(\*\) FROM leads`).
		WillReturnRows(sqlmock.NewRows([]string{"utm_source", "count"}).AddRow("ig", 12).AddRow("google", 5))
	mock.ExpectQuery(`SELECT course_interest, COUNT\(\*\) FROM leads`).
		WillReturnRows(sqlmock.NewRows([]string{"course_interest", "count"}).AddRow("conversacao", 20))

	h := NewAdminLeadsHandler(db, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/leads/stats", nil)
	w := httptest.NewRecorder()
	h.Stats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp LeadsStatsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 42 || resp.Today != 3 || resp.LastWeek != 11 || resp.WithUTM != 17 {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if resp.BySource["ig"] != 12 {
		t.Errorf("unexpected by_source: %v", resp.BySource)
	}
}
