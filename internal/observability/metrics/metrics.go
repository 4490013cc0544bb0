package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead submission flow.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	webhookTotal     *prometheus.CounterVec
	submitLatency    *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "culturapi",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"status"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "culturapi",
			Subsystem: "leads",
			Name:      "webhook_delivery_total",
			Help:      "Total webhook delivery attempts by outcome",
		}, []string{"status"}),
		submitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "culturapi",
			Subsystem: "leads",
			Name:      "submit_latency_seconds",
			Help:      "Latency of lead submission processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.webhookTotal, m.submitLatency)
	return m
}

func (m *LeadMetrics) ObserveSubmission(status string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(status).Inc()
	m.submitLatency.WithLabelValues(status).Observe(seconds)
}

func (m *LeadMetrics) ObserveWebhookDelivery(status string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(status).Inc()
}
