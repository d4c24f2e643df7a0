package session

import (
	"net/http"
	"net/url"
	"time"
)

// WriteIdentity sets the identity cookies issued at login. Values are
// percent-encoded so CookieJar.Identity returns them unchanged.
func WriteIdentity(w http.ResponseWriter, values map[string]string, lifetime time.Duration, now time.Time) {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	for key, value := range values {
		http.SetCookie(w, &http.Cookie{
			Name:     key,
			Value:    url.PathEscape(value),
			Path:     "/",
			Expires:  now.Add(lifetime),
			MaxAge:   int(lifetime.Seconds()),
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearIdentity expires the given cookies.
func ClearIdentity(w http.ResponseWriter, keys ...string) {
	for _, key := range keys {
		http.SetCookie(w, &http.Cookie{
			Name:    key,
			Value:   "",
			Path:    "/",
			Expires: time.Unix(0, 0),
			MaxAge:  -1,
			Secure:  true,
		})
	}
}
