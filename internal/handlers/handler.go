package handlers

import (
	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/services"
	"github.com/vaughan-dsouza/storekeeper/internal/ui"
)

type Handler struct {
	Auth   *AuthHandler
	Items  *ItemHandler
	OAuth  *OAuthHandler
	Health *HealthHandler
	Pages  *PageHandler
}

// Deps is everything the handlers need. OAuth may be nil when Google
// sign-in is not configured; DB may be nil when no SQL backend is used.
type Deps struct {
	AuthService *services.AuthService
	ItemService *services.ItemService
	Cookies     auth.CookiePolicy
	OAuth       OAuthProvider
	DB          Pinger
	Renderer    *ui.Renderer
	Log         logging.Logger
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		Auth:   NewAuthHandler(d.AuthService, d.Cookies, d.Log),
		Items:  NewItemHandler(d.ItemService, d.Log),
		Health: NewHealthHandler(d.DB),
		Pages:  NewPageHandler(d.AuthService, d.ItemService, d.Cookies, d.Renderer, d.OAuth != nil, d.Log),
	}
	if d.OAuth != nil {
		h.OAuth = NewOAuthHandler(d.OAuth, d.AuthService, d.Cookies, d.Renderer, d.Log)
	}
	return h
}
