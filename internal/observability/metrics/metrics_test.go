package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)

	m.ObserveSubmission("success", 0.02)
	m.ObserveSubmission("success", 0.01)
	m.ObserveSubmission("validation_error", 0.001)

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("expected 2 success submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("validation_error")); got != 1 {
		t.Errorf("expected 1 validation_error submission, got %v", got)
	}
}

func TestObserveWebhookDelivery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)

	m.ObserveWebhookDelivery("error")

	if got := testutil.ToFloat64(m.webhookTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 webhook error, got %v", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *LeadMetrics
	m.ObserveSubmission("success", 0.1)
	m.ObserveWebhookDelivery("ok")
}
