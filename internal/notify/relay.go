package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookRelay delivers lead payloads to the marketing-automation
// endpoint. One POST per lead, no retries, no queue.
type WebhookRelay struct {
	url    string
	client *http.Client
}

// NewWebhookRelay creates a relay for the given endpoint. An empty URL
// produces a disabled relay whose Send is a no-op error.
func NewWebhookRelay(url string, timeout time.Duration) *WebhookRelay {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookRelay{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a destination URL is configured.
func (r *WebhookRelay) Enabled() bool { return r.url != "" }

// Send POSTs payload as JSON. Non-2xx responses count as failures.
func (r *WebhookRelay) Send(ctx context.Context, payload any) error {
	if r.url == "" {
		return fmt.Errorf("notify: webhook URL not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: deliver webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook responded %d", resp.StatusCode)
	}
	return nil
}
