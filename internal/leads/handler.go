package leads

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vbndigital/culturapi/internal/attribution"
	"github.com/vbndigital/culturapi/pkg/logging"
)

// User-facing API messages.
const (
	msgInvalidBody   = "Corpo da requisição inválido"
	msgInvalidForm   = "Dados do formulário inválidos"
	msgInternalError = "Erro interno do servidor"
	msgRetryLater    = "Tente novamente em alguns minutos"
	msgLeadSaved     = "Lead saved successfully"
)

// Handler handles HTTP requests for leads
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type submitResponse struct {
	Success      bool              `json:"success"`
	Data         *Lead             `json:"data,omitempty"`
	Message      string            `json:"message,omitempty"`
	WhatsAppLink string            `json:"whatsapp_link,omitempty"`
	UTMCaptured  map[string]string `json:"utm_captured,omitempty"`
	Error        string            `json:"error,omitempty"`
	Details      any               `json:"details,omitempty"`
}

// Submit handles POST /api/leads
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, submitResponse{
			Success: false,
			Error:   msgInvalidBody,
			Details: err.Error(),
		})
		return
	}

	result, err := h.service.Submit(r.Context(), &req, requestMeta(r))
	if err != nil {
		if errs, ok := AsValidationErrors(err); ok {
			writeJSON(w, http.StatusBadRequest, submitResponse{
				Success: false,
				Error:   msgInvalidForm,
				Details: errs,
			})
			return
		}
		// Storage failures surface as a generic retry message; the
		// sub-kind stays in the logs.
		writeJSON(w, http.StatusInternalServerError, submitResponse{
			Success: false,
			Error:   msgInternalError,
			Details: msgRetryLater,
		})
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Success:      true,
		Data:         result.Lead,
		Message:      msgLeadSaved,
		WhatsAppLink: result.WhatsAppLink,
		UTMCaptured:  utmCaptured(result.Attribution),
	})
}

// Ack handles GET /api/leads: a static acknowledgment used by uptime
// checks and the form's connectivity probe. It never lists leads.
func (h *Handler) Ack(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "API está funcionando!",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"utm_tracking": "enabled",
		"supported_parameters": []string{
			"utm_source", "utm_medium", "utm_campaign", "utm_content", "url_referrer",
		},
	})
}

func utmCaptured(snap attribution.Snapshot) map[string]string {
	out := map[string]string{}
	if snap.UTMSource != "" {
		out["utm_source"] = snap.UTMSource
	}
	if snap.UTMMedium != "" {
		out["utm_medium"] = snap.UTMMedium
	}
	if snap.UTMCampaign != "" {
		out["utm_campaign"] = snap.UTMCampaign
	}
	if snap.UTMContent != "" {
		out["utm_content"] = snap.UTMContent
	}
	if snap.ReferrerURL != "" {
		out["url_referrer"] = snap.ReferrerURL
	}
	return out
}

// requestMeta collects the request details forwarded to the webhook and
// used for attribution retrieval. The page URL that carried the UTM
// parameters arrives as the Referer of the API call.
func requestMeta(r *http.Request) RequestMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}

	sessionID, _ := attribution.SessionIDFromContext(r.Context())

	return RequestMeta{
		IPAddress:  ip,
		UserAgent:  r.UserAgent(),
		Referer:    r.Referer(),
		SessionID:  sessionID,
		RequestURL: r.Referer(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
