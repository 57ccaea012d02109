// Package session implements the session lifecycle: issuing a signed token on
// successful authentication, gating protected requests, and terminating a
// session ahead of its natural expiry.
package session

import (
	"net/http"
	"strings"
	"time"

	"supernova.org/internal/auth"
	"supernova.org/internal/user"
)

const (
	// CookieName is the session cookie carried by browser clients.
	CookieName = "token"
	// DefaultTTL is the fixed session lifetime.
	DefaultTTL = 24 * time.Hour

	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// ExtractToken pulls the candidate session token from a request: an explicit
// bearer credential wins, the session cookie is the fallback.
func ExtractToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get(authHeader))
	if strings.HasPrefix(header, bearerPrefix) {
		if token := strings.TrimSpace(header[len(bearerPrefix):]); token != "" {
			return token, true
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// Issuer mints session tokens for verified identities and describes how they
// are carried back to the client.
type Issuer struct {
	codec *auth.Codec
	ttl   time.Duration
}

// NewIssuer constructs an Issuer with the fixed TTL policy.
func NewIssuer(codec *auth.Codec) *Issuer {
	return &Issuer{codec: codec, ttl: DefaultTTL}
}

// NewIssuerTTL constructs an Issuer with a custom session lifetime. A
// non-positive ttl falls back to the default.
func NewIssuerTTL(codec *auth.Codec, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{codec: codec, ttl: ttl}
}

// Issue mints exactly one token for the identity and the cookie that carries
// it. It has no side effects beyond token creation.
func (i *Issuer) Issue(u *user.User) (string, *http.Cookie, error) {
	token, _, err := i.codec.Encode(u.ID, u.Username, string(u.Role), i.ttl)
	if err != nil {
		return "", nil, err
	}
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(i.ttl / time.Second),
		HttpOnly: true,
		Secure:   true,
	}
	return token, cookie, nil
}

// ExpiredCookie returns the directive that makes the client discard its
// session credential immediately.
func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
