// Package session resolves who is looking at a page from client-stored cookies.
package session

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	KeyUserID   = "userID"
	KeyTenantID = "tenantID"
	KeyName     = "name"
)

// DefaultLifetime is how long identity cookies live after login.
const DefaultLifetime = 30 * 24 * time.Hour

// IdentityProvider returns the stored value for key, or false when absent.
type IdentityProvider interface {
	Identity(key string) (string, bool)
}

// CookieJar is a parsed Cookie header.
type CookieJar map[string]string

// ParseCookieHeader splits "a=1; b=2" into pairs. Malformed pairs are skipped
// and the first occurrence of a key wins, as in document.cookie lookups.
func ParseCookieHeader(header string) CookieJar {
	jar := make(CookieJar)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		if _, seen := jar[key]; seen {
			continue
		}
		jar[key] = strings.TrimSpace(value)
	}
	return jar
}

// FromRequest reads every Cookie header of r.
func FromRequest(r *http.Request) CookieJar {
	return ParseCookieHeader(strings.Join(r.Header.Values("Cookie"), "; "))
}

// Identity returns the percent-decoded value. A value that does not decode is
// returned as stored.
func (j CookieJar) Identity(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	raw, ok := j[key]
	if !ok {
		return "", false
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw, true
	}
	return decoded, true
}

// Static is a fixed set of identities, useful where no request exists.
type Static map[string]string

func (s Static) Identity(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v, ok := s[key]
	return v, ok
}

// Session is a typed view over an IdentityProvider.
type Session struct {
	provider IdentityProvider
}

func New(provider IdentityProvider) Session {
	return Session{provider: provider}
}

func (s Session) lookup(key string) (string, bool) {
	if s.provider == nil {
		return "", false
	}
	v, ok := s.provider.Identity(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func (s Session) TenantID() (string, bool) { return s.lookup(KeyTenantID) }
func (s Session) UserID() (string, bool)   { return s.lookup(KeyUserID) }
func (s Session) Name() (string, bool)     { return s.lookup(KeyName) }
