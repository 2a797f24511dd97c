package middleware

import (
	"net/http"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
)

// PageKind classifies browser pages for the UI guard.
type PageKind int

const (
	// PublicPage is reachable signed out (login, signup).
	PublicPage PageKind = iota
	// ProtectedPage requires a session.
	ProtectedPage
)

type Decision int

const (
	Render Decision = iota
	RedirectToLogin
	RedirectToDashboard
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decide is the UI guard policy.
func Decide(kind PageKind, authenticated bool) Decision {
	switch {
	case kind == ProtectedPage && !authenticated:
		return RedirectToLogin
	case kind == PublicPage && authenticated:
		return RedirectToDashboard
	default:
		return Render
	}
}

// Page applies Decide to every request of the wrapped handler.
func Page(kind PageKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := auth.FromContext(r.Context())

			switch Decide(kind, ok) {
			case RedirectToLogin:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			case RedirectToDashboard:
				http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
