package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
	"github.com/vaughan-dsouza/storekeeper/internal/services"
	"github.com/vaughan-dsouza/storekeeper/internal/ui"
	"github.com/vaughan-dsouza/storekeeper/internal/validation"
)

// PageHandler serves the browser UI. Access is decided by middleware.Page
// before any of these run.
type PageHandler struct {
	auth          *services.AuthService
	items         *services.ItemService
	cookies       auth.CookiePolicy
	ui            *ui.Renderer
	googleEnabled bool
	log           logging.Logger
}

func NewPageHandler(authSvc *services.AuthService, items *services.ItemService, cookies auth.CookiePolicy,
	renderer *ui.Renderer, googleEnabled bool, log logging.Logger) *PageHandler {
	return &PageHandler{
		auth:          authSvc,
		items:         items,
		cookies:       cookies,
		ui:            renderer,
		googleEnabled: googleEnabled,
		log:           log,
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := h.ui.Render(w, status, page, data); err != nil {
		h.log.Error(r.Context(), "render page", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ---------------------- LOGIN ----------------------

func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	page := ui.LoginPage{GoogleEnabled: h.googleEnabled}
	if r.URL.Query().Get("error") == "oauth" {
		page.Error = "Google sign-in failed"
	}
	h.render(w, r, http.StatusOK, "login", page)
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	in := validation.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	page := ui.LoginPage{Email: in.Email, GoogleEnabled: h.googleEnabled}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		var fe *validation.FieldError
		switch {
		case errors.As(err, &fe):
			page.Error = fe.Message
			h.render(w, r, http.StatusBadRequest, "login", page)
		case errors.Is(err, common.ErrUnauthorized):
			page.Error = "Invalid email or password"
			h.render(w, r, http.StatusUnauthorized, "login", page)
		default:
			h.log.Error(r.Context(), "login failed", "error", err)
			page.Error = "Something went wrong, please try again"
			h.render(w, r, http.StatusInternalServerError, "login", page)
		}
		return
	}

	h.cookies.Set(w, res.Token, res.ExpiresAt)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ---------------------- SIGN UP ----------------------

func (h *PageHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", ui.SignupPage{})
}

// Signup creates the account and signs the new user straight in.
func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	in := validation.SignupInput{
		Name:      r.PostFormValue("name"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		StoreName: r.PostFormValue("storeName"),
	}
	page := ui.SignupPage{Name: in.Name, Email: in.Email, StoreName: in.StoreName}

	if _, err := h.auth.Signup(r.Context(), in); err != nil {
		var fe *validation.FieldError
		switch {
		case errors.As(err, &fe):
			page.Error = fe.Message
			h.render(w, r, http.StatusBadRequest, "signup", page)
		case errors.Is(err, common.ErrConflict):
			page.Error = "User already exists"
			h.render(w, r, http.StatusBadRequest, "signup", page)
		default:
			h.log.Error(r.Context(), "signup failed", "error", err)
			page.Error = "Something went wrong, please try again"
			h.render(w, r, http.StatusInternalServerError, "signup", page)
		}
		return
	}

	res, err := h.auth.Login(r.Context(), validation.LoginInput{Email: in.Email, Password: in.Password})
	if err != nil {
		h.log.Error(r.Context(), "login after signup failed", "error", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.cookies.Set(w, res.Token, res.ExpiresAt)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ---------------------- DASHBOARD ----------------------

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.dashboard(w, r, http.StatusOK, "", ui.ItemForm{})
}

func (h *PageHandler) dashboard(w http.ResponseWriter, r *http.Request, status int, msg string, form ui.ItemForm) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	items, err := h.items.List(r.Context(), sess.StoreID)
	if err != nil {
		h.log.Error(r.Context(), "load dashboard", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var low []models.Item
	for _, it := range items {
		if it.LowStock() {
			low = append(low, it)
		}
	}

	key, dir := ui.SortItems(items, r.URL.Query().Get("sort"), r.URL.Query().Get("dir"))

	h.render(w, r, status, "dashboard", ui.DashboardPage{
		User: models.PublicUser{
			ID:      sess.UserID,
			Email:   sess.Email,
			Name:    sess.Name,
			StoreID: sess.StoreID,
			Role:    sess.Role,
		},
		Items:    items,
		LowStock: low,
		Sort:     key,
		Dir:      dir,
		Error:    msg,
		Form:     form,
	})
}

func (h *PageHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	form := ui.ItemForm{
		Name:     r.PostFormValue("name"),
		SKU:      r.PostFormValue("sku"),
		Quantity: r.PostFormValue("quantity"),
		MinStock: r.PostFormValue("minStock"),
	}
	in := validation.ItemInput{
		Name:     formString(r, "name"),
		SKU:      formString(r, "sku"),
		Quantity: formNumber(r, "quantity"),
		MinStock: formNumber(r, "minStock"),
	}

	if _, err := h.items.Create(r.Context(), sess.StoreID, in); err != nil {
		h.itemError(w, r, err, form)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *PageHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	in := validation.ItemInput{
		Name:     formString(r, "name"),
		Quantity: formNumber(r, "quantity"),
		MinStock: formNumber(r, "minStock"),
	}

	if _, err := h.items.Update(r.Context(), sess.StoreID, chi.URLParam(r, "sku"), in); err != nil {
		h.itemError(w, r, err, ui.ItemForm{})
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *PageHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.items.Delete(r.Context(), sess.StoreID, chi.URLParam(r, "sku")); err != nil {
		h.itemError(w, r, err, ui.ItemForm{})
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *PageHandler) itemError(w http.ResponseWriter, r *http.Request, err error, form ui.ItemForm) {
	var fe *validation.FieldError
	switch {
	case errors.As(err, &fe):
		h.dashboard(w, r, http.StatusBadRequest, fe.Message, form)
	case errors.Is(err, common.ErrConflict):
		h.dashboard(w, r, http.StatusConflict, "SKU already exists in this store", form)
	case errors.Is(err, common.ErrNotFound):
		h.dashboard(w, r, http.StatusNotFound, "Item not found", form)
	default:
		h.log.Error(r.Context(), "item form", "error", err)
		h.dashboard(w, r, http.StatusInternalServerError, "Something went wrong, please try again", form)
	}
}

// formString returns nil for a field that was not submitted.
func formString(r *http.Request, key string) *string {
	v := r.PostFormValue(key)
	if _, ok := r.PostForm[key]; !ok {
		return nil
	}
	return &v
}

// formNumber returns nil for a missing or blank field so defaults and
// partial updates apply.
func formNumber(r *http.Request, key string) *json.Number {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" {
		return nil
	}
	n := json.Number(v)
	return &n
}
