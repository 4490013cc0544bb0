package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vbndigital/culturapi/internal/attribution"
)

// SessionAttribution assigns a visitor session cookie and captures UTM
// attribution from the request URL into the store. The session ID is
// placed in the request context for the submit pipeline.
//
// Capture must never block or fail a request: any problem degrades to
// an empty snapshot.
func SessionAttribution(store attribution.Store, cookieName string, ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = "culturapi_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				sessionID = c.Value
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if store != nil {
				// Set ignores empty snapshots, so UTM-less page views
				// never erase the capture that brought the visitor in.
				store.Set(sessionID, attribution.CaptureFromURL(requestURL(r)))
			}

			ctx := attribution.WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
