// Package router assembles the HTTP surface: JSON API, browser pages and
// the middleware chain in front of both.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vaughan-dsouza/storekeeper/internal/handlers"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/middleware"
)

type Options struct {
	CORSOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
	// AuthInterval and AuthBurst throttle login and signup per client.
	AuthInterval time.Duration
	AuthBurst    int
}

func New(h *handlers.Handler, sessions *middleware.Sessions, log logging.Logger, opts Options) http.Handler {
	if opts.AuthInterval == 0 {
		opts.AuthInterval = 6 * time.Second
	}
	if opts.AuthBurst == 0 {
		opts.AuthBurst = 10
	}
	limiter := middleware.NewRateLimiter(opts.AuthInterval, opts.AuthBurst)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(sessions.Load)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		if len(opts.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   opts.CORSOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}

		// Public
		r.With(limiter.Handler).Post("/auth/signup", h.Auth.SignUp)
		r.With(limiter.Handler).Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)

		if h.OAuth != nil {
			r.Get("/auth/google", h.OAuth.Start)
			r.Get("/auth/google/callback", h.OAuth.Callback)
		}

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireAPI)

			r.Get("/auth/session", h.Auth.Session)

			r.Get("/items", h.Items.List)
			r.Post("/items", h.Items.Create)
			r.Get("/items/low-stock", h.Items.LowStock)
			r.Get("/items/export.csv", h.Items.ExportCSV)
			r.Get("/items/export.xlsx", h.Items.ExportXLSX)
			r.Get("/items/{sku}", h.Items.Get)
			r.Put("/items/{sku}", h.Items.Update)
			r.Delete("/items/{sku}", h.Items.Delete)
		})
	})

	// Browser pages
	r.Get("/", h.Pages.Root)
	r.Post("/logout", h.Pages.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Page(middleware.PublicPage))

		r.Get("/login", h.Pages.LoginForm)
		r.With(limiter.Handler).Post("/login", h.Pages.Login)
		r.Get("/signup", h.Pages.SignupForm)
		r.With(limiter.Handler).Post("/signup", h.Pages.Signup)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Page(middleware.ProtectedPage))

		r.Get("/dashboard", h.Pages.Dashboard)
		r.Post("/dashboard/items", h.Pages.CreateItem)
		r.Post("/dashboard/items/{sku}", h.Pages.UpdateItem)
		r.Post("/dashboard/items/{sku}/delete", h.Pages.DeleteItem)
	})

	return r
}
