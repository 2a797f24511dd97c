package middleware

import (
	"errors"
	"net/http"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/utils"
)

// Sessions resolves the caller's session once per request. It is the only
// component that reads the session cookie or verifies tokens.
type Sessions struct {
	issuer  *auth.Issuer
	cookies auth.CookiePolicy
	log     logging.Logger
}

func NewSessions(issuer *auth.Issuer, cookies auth.CookiePolicy, log logging.Logger) *Sessions {
	return &Sessions{issuer: issuer, cookies: cookies, log: log}
}

// Load verifies the request's token, if any, and stores the session in the
// request context. Requests without a valid token pass through untouched.
func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cookies.Token(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.issuer.Verify(token)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				s.log.Debug(r.Context(), "session expired")
			} else {
				s.log.Debug(r.Context(), "session rejected", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	})
}

// RequireAPI rejects requests without a session with 401 JSON and never
// calls next for them.
func (s *Sessions) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
