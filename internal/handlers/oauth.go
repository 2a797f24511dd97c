package handlers

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/services"
	"github.com/vaughan-dsouza/storekeeper/internal/ui"
)

// OAuthProvider is the part of auth.OAuthProvider the handlers use.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.Profile, error)
}

const (
	stateCookie = "storekeeper.oauth-state"
	stateTTL    = 10 * time.Minute
)

type OAuthHandler struct {
	provider OAuthProvider
	svc      *services.AuthService
	cookies  auth.CookiePolicy
	renderer *ui.Renderer
	log      logging.Logger
}

func NewOAuthHandler(provider OAuthProvider, svc *services.AuthService, cookies auth.CookiePolicy, renderer *ui.Renderer, log logging.Logger) *OAuthHandler {
	return &OAuthHandler{provider: provider, svc: svc, cookies: cookies, renderer: renderer, log: log}
}

// Start redirects to the provider with a fresh state bound to this browser.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		h.log.Error(r.Context(), "oauth state", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(buf)

	// Lax so the cookie survives the cross-site redirect back
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the code exchange and signs the user in.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Path:     "/api/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	c, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(state)) != 1 {
		h.log.Warn(r.Context(), "oauth state mismatch")
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	profile, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.log.Warn(r.Context(), "oauth exchange failed", "error", err)
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	res, err := h.svc.SignInExternal(r.Context(), *profile)
	if err != nil {
		h.log.Error(r.Context(), "oauth sign-in failed", "error", err)
		http.Redirect(w, r, "/login?error=oauth", http.StatusSeeOther)
		return
	}

	h.cookies.Set(w, res.Token, res.ExpiresAt)

	// A redirect here would still belong to the chain started on the
	// provider's site, and browsers withhold Strict cookies on it.
	if err := h.renderer.Render(w, http.StatusOK, "signedin", nil); err != nil {
		h.log.Error(r.Context(), "render signedin", "error", err)
	}
}
