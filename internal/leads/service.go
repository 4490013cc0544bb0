package leads

import (
	"context"
	"strings"
	"time"

	"github.com/vbndigital/culturapi/internal/attribution"
	"github.com/vbndigital/culturapi/internal/config"
	"github.com/vbndigital/culturapi/internal/observability/metrics"
	"github.com/vbndigital/culturapi/pkg/logging"
)

// Notifier receives leads after they were durably stored. Delivery is
// best-effort and must never affect the submission result.
type Notifier interface {
	LeadStored(lead *Lead, meta RequestMeta)
}

// RequestMeta carries request-scoped details the pipeline forwards to
// the notifier and uses for attribution retrieval.
type RequestMeta struct {
	IPAddress  string
	UserAgent  string
	Referer    string
	SessionID  string
	RequestURL string
}

// SubmitResult is returned to the caller on success.
type SubmitResult struct {
	Lead         *Lead
	WhatsAppLink string
	Attribution  attribution.Snapshot
}

// Service orchestrates one lead submission: validation, phone
// normalization, attribution merge, persistence and the detached
// downstream notification.
type Service struct {
	repo           Repository
	attribStore    attribution.Store
	notifier       Notifier
	metrics        *metrics.LeadMetrics
	logger         *logging.Logger
	policy         config.EmailConsentPolicy
	whatsAppNumber string
	storeTimeout   time.Duration
}

// NewService wires the submission pipeline. An empty whatsAppNumber
// falls back to the production default.
func NewService(repo Repository, attribStore attribution.Store, notifier Notifier, m *metrics.LeadMetrics, logger *logging.Logger, policy config.EmailConsentPolicy, whatsAppNumber string, storeTimeout time.Duration) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if storeTimeout <= 0 {
		storeTimeout = 10 * time.Second
	}
	return &Service{
		repo:           repo,
		attribStore:    attribStore,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
		policy:         policy,
		whatsAppNumber: whatsAppNumber,
		storeTimeout:   storeTimeout,
	}
}

// Submit runs the pipeline for one raw form submission. Validation
// failures return ValidationErrors with no side effects; persistence
// failures return *StorageError with no notification sent. Once the
// lead is stored the submission is a success regardless of the
// notification outcome.
func (s *Service) Submit(ctx context.Context, req *SubmitLeadRequest, meta RequestMeta) (*SubmitResult, error) {
	start := time.Now()

	if errs := Validate(req, s.policy); errs != nil {
		s.metrics.ObserveSubmission("validation_error", time.Since(start).Seconds())
		return nil, errs
	}

	lead := &Lead{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		WhatsApp:        ToDialString(req.WhatsApp),
		AgeGroup:        req.AgeGroup,
		CourseInterest:  req.CourseInterest,
		Message:         req.Message,
		EmailConsent:    req.EmailConsent,
		WhatsAppConsent: req.WhatsAppConsent,
	}

	snap := s.resolveAttribution(req, meta)
	lead.UTMSource = snap.UTMSource
	lead.UTMMedium = snap.UTMMedium
	lead.UTMCampaign = snap.UTMCampaign
	lead.UTMContent = snap.UTMContent
	lead.ReferrerURL = snap.ReferrerURL

	if lead.AgeGroup == "" {
		lead.AgeGroup = DefaultAgeGroup
	}
	if lead.CourseInterest == "" {
		lead.CourseInterest = DefaultCourseInterest
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	stored, err := s.repo.Insert(insertCtx, lead)
	if err != nil {
		if storageErr, ok := AsStorageError(err); ok {
			s.logger.Error("lead insert failed",
				"kind", string(storageErr.Kind),
				"error", storageErr.Err,
			)
		} else {
			s.logger.Error("lead insert failed", "error", err)
		}
		s.metrics.ObserveSubmission("storage_error", time.Since(start).Seconds())
		return nil, err
	}

	s.logger.Info("lead stored",
		"id", stored.ID,
		"course_interest", stored.CourseInterest,
		"utm_source", stored.UTMSource,
	)
	s.metrics.ObserveSubmission("success", time.Since(start).Seconds())

	// Detached: delivery outcome is observable via logs and metrics only.
	if s.notifier != nil {
		go s.notifier.LeadStored(stored, meta)
	}

	return &SubmitResult{
		Lead:         stored,
		WhatsAppLink: WhatsAppLink(s.whatsAppNumber, stored.Name),
		Attribution:  snap,
	}, nil
}

// resolveAttribution prefers the snapshot captured for the session over
// anything the form supplied. Form-forwarded utmParams are only a
// fallback for visitors whose first request is the submission itself.
func (s *Service) resolveAttribution(req *SubmitLeadRequest, meta RequestMeta) attribution.Snapshot {
	snap := attribution.Retrieve(s.attribStore, meta.SessionID, meta.RequestURL)
	if !snap.IsEmpty() {
		return snap
	}

	fallback := attribution.Snapshot{
		UTMSource:   req.UTMParams.UTMSource,
		UTMMedium:   req.UTMParams.UTMMedium,
		UTMCampaign: req.UTMParams.UTMCampaign,
		UTMContent:  req.UTMParams.UTMContent,
		ReferrerURL: req.UTMParams.ReferrerURL,
	}
	if fallback.IsEmpty() {
		return attribution.Snapshot{}
	}
	fallback.CapturedAt = time.Now().UTC()
	return fallback
}
