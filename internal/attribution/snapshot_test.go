package attribution

import (
	"testing"
	"time"
)

func TestCaptureFromURL_AllParameters(t *testing.T) {
	snap := CaptureFromURL("https://example.com/matricula?utm_source=ig&utm_medium=social&utm_campaign=volta-as-aulas&utm_content=stories")

	if snap.UTMSource != "ig" {
		t.Errorf("expected utm_source=ig, got %q", snap.UTMSource)
	}
	if snap.UTMMedium != "social" {
		t.Errorf("expected utm_medium=social, got %q", snap.UTMMedium)
	}
	if snap.UTMCampaign != "volta-as-aulas" {
		t.Errorf("expected utm_campaign=volta-as-aulas, got %q", snap.UTMCampaign)
	}
	if snap.UTMContent != "stories" {
		t.Errorf("expected utm_content=stories, got %q", snap.UTMContent)
	}
	if snap.ReferrerURL == "" {
		t.Error("expected referrer URL to be captured alongside UTM parameters")
	}
	if snap.PageCaptured != "/matricula" {
		t.Errorf("expected page /matricula, got %q", snap.PageCaptured)
	}
	if snap.CapturedAt.IsZero() {
		t.Error("expected capture timestamp")
	}
}

func TestCaptureFromURL_NoUTMYieldsEmpty(t *testing.T) {
	snap := CaptureFromURL("https://example.com/?fbclid=abc123")

	if !snap.IsEmpty() {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if snap.ReferrerURL != "" {
		t.Error("referrer alone must not count as attribution signal")
	}
}

func TestCaptureFromURL_MalformedURL(t *testing.T) {
	if snap := CaptureFromURL("://not a url"); !snap.IsEmpty() {
		t.Errorf("expected empty snapshot for malformed URL, got %+v", snap)
	}
}

func TestMemoryStore_NonEmptyOverwrites(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	store.Set("sess-1", CaptureFromURL("https://example.com/?utm_source=ig"))

	// A later page view carrying its own UTM parameters replaces the
	// stored attribution, mirroring how each campaign landing rewrites
	// the visitor's session.
	store.Set("sess-1", CaptureFromURL("https://example.com/?utm_source=fb&utm_campaign=c2"))

	got, ok := store.Get("sess-1")
	if !ok {
		t.Fatal("expected stored snapshot")
	}
	if got.UTMSource != "fb" {
		t.Errorf("expected later capture to overwrite: got utm_source=%q", got.UTMSource)
	}
	if got.UTMCampaign != "c2" {
		t.Errorf("expected utm_campaign=c2, got %q", got.UTMCampaign)
	}
}

func TestMemoryStore_EmptyNeverErases(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	store.Set("sess-1", CaptureFromURL("https://example.com/?utm_source=ig"))

	store.Set("sess-1", Snapshot{})

	if got, ok := store.Get("sess-1"); !ok || got.UTMSource != "ig" {
		t.Errorf("empty snapshot erased stored attribution: %+v ok=%v", got, ok)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	snap := CaptureFromURL("https://example.com/?utm_source=ig")
	snap.CapturedAt = time.Now().Add(-2 * time.Minute)
	store.Set("sess-1", snap)

	if _, ok := store.Get("sess-1"); ok {
		t.Error("expected expired snapshot to be dropped")
	}
}

func TestRetrieve_RoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	store.Set("sess-1", CaptureFromURL("https://example.com/?utm_source=ig"))

	// Subsequent page carries no UTM parameters.
	got := Retrieve(store, "sess-1", "https://example.com/contato")
	if got.UTMSource != "ig" {
		t.Errorf("expected stored utm_source=ig, got %q", got.UTMSource)
	}
}

func TestRetrieve_FallsBackToCurrentURL(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	got := Retrieve(store, "sess-unknown", "https://example.com/?utm_source=google")
	if got.UTMSource != "google" {
		t.Errorf("expected fresh capture utm_source=google, got %q", got.UTMSource)
	}
}
