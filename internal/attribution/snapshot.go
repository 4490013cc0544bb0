package attribution

import (
	"net/url"
	"time"
)

// Snapshot holds the campaign-attribution parameters captured on a
// visitor's first touch. All fields are optional; a zero Snapshot means
// no attribution signal was seen.
type Snapshot struct {
	UTMSource    string    `json:"utm_source,omitempty"`
	UTMMedium    string    `json:"utm_medium,omitempty"`
	UTMCampaign  string    `json:"utm_campaign,omitempty"`
	UTMContent   string    `json:"utm_content,omitempty"`
	ReferrerURL  string    `json:"url_referrer,omitempty"`
	CapturedAt   time.Time `json:"captured_at,omitempty"`
	PageCaptured string    `json:"page_captured,omitempty"`
}

// IsEmpty reports whether the snapshot carries no UTM parameters. The
// referrer URL alone does not count as attribution signal.
func (s Snapshot) IsEmpty() bool {
	return s.UTMSource == "" && s.UTMMedium == "" && s.UTMCampaign == "" && s.UTMContent == ""
}

// CaptureFromURL reads the named UTM query parameters from rawURL. When
// at least one is present the full URL and path are recorded alongside
// them. A malformed URL or a URL without UTM parameters yields an empty
// snapshot; capture never fails.
func CaptureFromURL(rawURL string) Snapshot {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Snapshot{}
	}

	q := u.Query()
	snap := Snapshot{
		UTMSource:   q.Get("utm_source"),
		UTMMedium:   q.Get("utm_medium"),
		UTMCampaign: q.Get("utm_campaign"),
		UTMContent:  q.Get("utm_content"),
	}
	if snap.IsEmpty() {
		return Snapshot{}
	}

	snap.ReferrerURL = rawURL
	snap.CapturedAt = time.Now().UTC()
	snap.PageCaptured = u.Path
	return snap
}

// Retrieve returns the snapshot stored for the session if one exists,
// falling back to a fresh capture from currentURL. The fallback covers a
// visitor whose very first request is the form submission itself.
func Retrieve(store Store, sessionID, currentURL string) Snapshot {
	if store != nil && sessionID != "" {
		if snap, ok := store.Get(sessionID); ok {
			return snap
		}
	}
	return CaptureFromURL(currentURL)
}
