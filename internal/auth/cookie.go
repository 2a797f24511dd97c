package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	devCookieName  = "storekeeper.session-token"
	prodCookieName = "__Secure-storekeeper.session-token"
)

// CookiePolicy decides how the session cookie is named and flagged.
type CookiePolicy struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

// NewCookiePolicy returns the production policy (Secure, SameSite=Strict,
// __Secure- prefix) or the development one (SameSite=Lax, plain http).
func NewCookiePolicy(production bool) CookiePolicy {
	if production {
		return CookiePolicy{Name: prodCookieName, Secure: true, SameSite: http.SameSiteStrictMode}
	}
	return CookiePolicy{Name: devCookieName, Secure: false, SameSite: http.SameSiteLaxMode}
}

func (p CookiePolicy) Set(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	})
}

func (p CookiePolicy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	})
}

// Token extracts the raw session token: the cookie first, then an
// "Authorization: Bearer" header for non-browser clients.
func (p CookiePolicy) Token(r *http.Request) string {
	if c, err := r.Cookie(p.Name); err == nil && c.Value != "" {
		return c.Value
	}

	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
