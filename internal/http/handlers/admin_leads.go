package handlers

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/vbndigital/culturapi/internal/leads"
	"github.com/vbndigital/culturapi/pkg/logging"
)

// AdminLeadsHandler handles admin API endpoints for lead management.
type AdminLeadsHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewAdminLeadsHandler creates a new admin leads handler.
func NewAdminLeadsHandler(db *sql.DB, logger *logging.Logger) *AdminLeadsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminLeadsHandler{
		db:     db,
		logger: logger,
	}
}

// LeadsListResponse represents a paginated list of leads.
type LeadsListResponse struct {
	Leads      []leads.Lead `json:"leads"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// LeadsStatsResponse aggregates submission counts for the dashboard.
type LeadsStatsResponse struct {
	Total      int            `json:"total"`
	Today      int            `json:"today"`
	LastWeek   int            `json:"last_week"`
	WithUTM    int            `json:"with_utm"`
	BySource   map[string]int `json:"by_source"`
	ByCourse   map[string]int `json:"by_course"`
	LastUpdate string         `json:"last_updated"`
}

const leadColumns = `id, name, email, whatsapp, age_group, course_interest, message,
	   email_consent, whatsapp_consent, utm_source, utm_medium, utm_campaign,
	   utm_content, url_referrer, created_at`

type leadsQuery struct {
	where string
	args  []any
}

// buildFilter translates the query string into a WHERE clause. Dates
// are inclusive day bounds in UTC.
func buildFilter(r *http.Request) leadsQuery {
	q := leadsQuery{where: " WHERE 1=1"}
	argNum := 1

	add := func(clause string, value any) {
		q.where += clause + "$" + strconv.Itoa(argNum)
		q.args = append(q.args, value)
		argNum++
	}

	if search := r.URL.Query().Get("search"); search != "" {
		placeholder := "$" + strconv.Itoa(argNum)
		q.where += " AND (name ILIKE " + placeholder + " OR email ILIKE " + placeholder + " OR whatsapp ILIKE " + placeholder + ")"
		q.args = append(q.args, "%"+search+"%")
		argNum++
	}
	if course := r.URL.Query().Get("course_interest"); course != "" {
		add(" AND course_interest = ", course)
	}
	if age := r.URL.Query().Get("age_group"); age != "" {
		add(" AND age_group = ", age)
	}
	if source := r.URL.Query().Get("utm_source"); source != "" {
		add(" AND utm_source = ", source)
	}
	if from := r.URL.Query().Get("date_from"); from != "" {
		if ts, err := time.Parse("2006-01-02", from); err == nil {
			add(" AND created_at >= ", ts)
		}
	}
	if to := r.URL.Query().Get("date_to"); to != "" {
		if ts, err := time.Parse("2006-01-02", to); err == nil {
			add(" AND created_at <= ", ts.Add(24*time.Hour))
		}
	}
	return q
}

func (h *AdminLeadsHandler) scanLeads(rows *sql.Rows) ([]leads.Lead, error) {
	out := []leads.Lead{}
	for rows.Next() {
		var l leads.Lead
		var email, message, utmSource, utmMedium, utmCampaign, utmContent, referrer sql.NullString
		if err := rows.Scan(
			&l.ID, &l.Name, &email, &l.WhatsApp, &l.AgeGroup, &l.CourseInterest,
			&message, &l.EmailConsent, &l.WhatsAppConsent, &utmSource, &utmMedium,
			&utmCampaign, &utmContent, &referrer, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		l.Email = email.String
		l.Message = message.String
		l.UTMSource = utmSource.String
		l.UTMMedium = utmMedium.String
		l.UTMCampaign = utmCampaign.String
		l.UTMContent = utmContent.String
		l.ReferrerURL = referrer.String
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListLeads returns a filtered, paginated list of leads, newest first.
// GET /admin/leads
func (h *AdminLeadsHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := buildFilter(r)

	var total int
	if err := h.db.QueryRowContext(r.Context(), "SELECT COUNT(*) FROM leads"+q.where, q.args...).Scan(&total); err != nil {
		h.logger.Error("admin leads count failed", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	query := "SELECT " + leadColumns + " FROM leads" + q.where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(q.args)+1) +
		" OFFSET $" + strconv.Itoa(len(q.args)+2)
	args := append(q.args, pageSize, (page-1)*pageSize)

	rows, err := h.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		h.logger.Error("admin leads query failed", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	list, err := h.scanLeads(rows)
	if err != nil {
		h.logger.Error("admin leads scan failed", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, LeadsListResponse{
		Leads:      list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// ExportCSV streams the filtered lead set as a CSV download.
// GET /admin/leads/export
func (h *AdminLeadsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := buildFilter(r)

	rows, err := h.db.QueryContext(r.Context(), "SELECT "+leadColumns+" FROM leads"+q.where+" ORDER BY created_at DESC", q.args...)
	if err != nil {
		h.logger.Error("admin leads export query failed", "error", err)
		http.Error(w, "failed to export leads", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	list, err := h.scanLeads(rows)
	if err != nil {
		h.logger.Error("admin leads export scan failed", "error", err)
		http.Error(w, "failed to export leads", http.StatusInternalServerError)
		return
	}

	filename := "leads-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "name", "email", "whatsapp", "whatsapp_display", "age_group", "course_interest",
		"message", "email_consent", "whatsapp_consent", "utm_source", "utm_medium",
		"utm_campaign", "utm_content", "url_referrer", "created_at",
	})
	for _, l := range list {
		_ = cw.Write([]string{
			l.ID, l.Name, l.Email, l.WhatsApp, leads.ToDisplayString(l.WhatsApp),
			l.AgeGroup, l.CourseInterest, l.Message,
			strconv.FormatBool(l.EmailConsent), strconv.FormatBool(l.WhatsAppConsent),
			l.UTMSource, l.UTMMedium, l.UTMCampaign, l.UTMContent, l.ReferrerURL,
			l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
}

// Stats returns aggregate submission counts.
// GET /admin/leads/stats
func (h *AdminLeadsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	resp := LeadsStatsResponse{
		BySource:   map[string]int{},
		ByCourse:   map[string]int{},
		LastUpdate: now.Format(time.RFC3339),
	}

	counts := []struct {
		query string
		args  []any
		dest  *int
	}{
		{"SELECT COUNT(*) FROM leads", nil, &resp.Total},
		{"SELECT COUNT(*) FROM leads WHERE created_at >= $1", []any{startOfDay}, &resp.Today},
		{"SELECT COUNT(*) FROM leads WHERE created_at >= $1", []any{now.AddDate(0, 0, -7)}, &resp.LastWeek},
		{"SELECT COUNT(*) FROM leads WHERE utm_source IS NOT NULL AND utm_source <> ''", nil, &resp.WithUTM},
	}
	for _, c := range counts {
		if err := h.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			h.logger.Error("admin leads stats failed", "error", err)
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
	}

	groups := []struct {
		query string
		dest  map[string]int
	}{
		{"SELECT utm_source, COUNT(*) FROM leads WHERE utm_source <> '' GROUP BY utm_source ORDER BY COUNT(*) DESC LIMIT 10", resp.BySource},
		{"SELECT course_interest, COUNT(*) FROM leads GROUP BY course_interest ORDER BY COUNT(*) DESC LIMIT 10", resp.ByCourse},
	}
	for _, g := range groups {
		rows, err := h.db.QueryContext(ctx, g.query)
		if err != nil {
			h.logger.Error("admin leads stats group failed", "error", err)
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				h.logger.Error("admin leads stats scan failed", "error", err)
				http.Error(w, "failed to compute stats", http.StatusInternalServerError)
				return
			}
			g.dest[key] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			h.logger.Error("admin leads stats rows failed", "error", err)
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}
		rows.Close()
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
