package leads

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// errConsentMissing guards the storage invariant that a lead is never
// persisted without WhatsApp consent, even if a caller bypasses the
// validator.
var errConsentMissing = errors.New("leads: refusing to persist lead without whatsapp consent")

// ListFilter narrows and pages the admin lead listing.
type ListFilter struct {
	Search         string // matches name, email or whatsapp
	CourseInterest string
	AgeGroup       string
	UTMSource      string
	DateFrom       time.Time
	DateTo         time.Time
	Limit          int
	Offset         int
}

// Repository defines the interface for lead storage
type Repository interface {
	// Insert persists the lead and returns it with store-assigned ID and
	// CreatedAt. Failures are reported as *StorageError.
	Insert(ctx context.Context, lead *Lead) (*Lead, error)
	// List returns leads newest-first.
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
}

// InMemoryRepository is a Repository backed by a map. Used in tests and
// local development without a database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Insert stores a copy of lead with a fresh ID and timestamp.
func (r *InMemoryRepository) Insert(ctx context.Context, lead *Lead) (*Lead, error) {
	if !lead.WhatsAppConsent {
		return nil, &StorageError{Kind: StorageOther, Err: errConsentMissing}
	}

	stored := *lead
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	r.leads[stored.ID] = &stored
	r.mu.Unlock()

	return &stored, nil
}

// List returns stored leads newest-first, applying the filter.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	all := make([]*Lead, 0, len(r.leads))
	for _, l := range r.leads {
		all = append(all, l)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	out := make([]*Lead, 0, len(all))
	for _, l := range all {
		if !matches(l, filter) {
			continue
		}
		out = append(out, l)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Lead{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(l *Lead, f ListFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(l.Name), needle) &&
			!strings.Contains(strings.ToLower(l.Email), needle) &&
			!strings.Contains(l.WhatsApp, needle) {
			return false
		}
	}
	if f.CourseInterest != "" && l.CourseInterest != f.CourseInterest {
		return false
	}
	if f.AgeGroup != "" && l.AgeGroup != f.AgeGroup {
		return false
	}
	if f.UTMSource != "" && l.UTMSource != f.UTMSource {
		return false
	}
	if !f.DateFrom.IsZero() && l.CreatedAt.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && l.CreatedAt.After(f.DateTo) {
		return false
	}
	return true
}
