package notify

import (
	"context"
	"time"

	"github.com/vbndigital/culturapi/internal/leads"
	"github.com/vbndigital/culturapi/internal/observability/metrics"
	"github.com/vbndigital/culturapi/pkg/logging"
)

// UTMSummary is a convenience block for quick campaign analysis on the
// receiving automation system.
type UTMSummary struct {
	HasUTMData     bool   `json:"has_utm_data"`
	CampaignName   string `json:"campaign_name,omitempty"`
	TrafficSource  string `json:"traffic_source,omitempty"`
	TrafficMedium  string `json:"traffic_medium,omitempty"`
	ContentVariant string `json:"content_variant,omitempty"`
	FullLandingURL string `json:"full_landing_url,omitempty"`
}

// LeadPayload is the enriched body forwarded to the webhook: the stored
// lead plus request metadata.
type LeadPayload struct {
	leads.Lead
	SubmittedAt string     `json:"submitted_at"`
	IPAddress   string     `json:"ip_address"`
	UserAgent   string     `json:"user_agent"`
	Referer     string     `json:"referer"`
	UTMSummary  UTMSummary `json:"utm_summary"`
}

// Service forwards stored leads to the configured webhook. Failures are
// logged and counted, never propagated: the lead is already durable by
// the time this runs.
type Service struct {
	relay   *WebhookRelay
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
	timeout time.Duration
}

// NewService creates a notification service around the relay.
func NewService(relay *WebhookRelay, m *metrics.LeadMetrics, logger *logging.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{relay: relay, metrics: m, logger: logger, timeout: timeout}
}

// LeadStored implements leads.Notifier. At most one delivery attempt.
func (s *Service) LeadStored(lead *leads.Lead, meta leads.RequestMeta) {
	if s.relay == nil || !s.relay.Enabled() {
		s.logger.Debug("notify: no webhook URL configured, skipping")
		return
	}

	payload := BuildPayload(lead, meta)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.relay.Send(ctx, payload); err != nil {
		s.logger.Error("notify: webhook delivery failed",
			"lead_id", lead.ID,
			"error", err,
		)
		s.metrics.ObserveWebhookDelivery("error")
		return
	}

	s.logger.Info("notify: webhook delivered", "lead_id", lead.ID)
	s.metrics.ObserveWebhookDelivery("success")
}

// BuildPayload assembles the webhook body for a stored lead.
func BuildPayload(lead *leads.Lead, meta leads.RequestMeta) LeadPayload {
	ip := meta.IPAddress
	if ip == "" {
		ip = "Unknown"
	}
	ua := meta.UserAgent
	if ua == "" {
		ua = "Unknown"
	}
	referer := meta.Referer
	if referer == "" {
		referer = "Direct"
	}

	return LeadPayload{
		Lead:        *lead,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
		IPAddress:   ip,
		UserAgent:   ua,
		Referer:     referer,
		UTMSummary: UTMSummary{
			HasUTMData:     lead.UTMSource != "" || lead.UTMMedium != "" || lead.UTMCampaign != "",
			CampaignName:   lead.UTMCampaign,
			TrafficSource:  lead.UTMSource,
			TrafficMedium:  lead.UTMMedium,
			ContentVariant: lead.UTMContent,
			FullLandingURL: lead.ReferrerURL,
		},
	}
}
