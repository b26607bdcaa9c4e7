package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionCookieName carries the booking session id in browsers
	SessionCookieName = "booking_session"
	// SessionHeader carries the booking session id for API clients
	SessionHeader = "X-Session-ID"
)

type sessionKey struct{}

// SessionMiddleware attaches a booking session id to every request. Requests
// without one get a fresh id, returned as a cookie and a header.
func SessionMiddleware(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := requestSessionID(r)
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, sessionID)

			ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestSessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && validSessionID(c.Value) {
		return c.Value
	}
	if id := r.Header.Get(SessionHeader); validSessionID(id) {
		return id
	}
	return ""
}

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// SessionID returns the booking session id of the request
func SessionID(r *http.Request) string {
	if id, ok := r.Context().Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}
