package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
	"github.com/vaughan-dsouza/storekeeper/internal/services"
	"github.com/vaughan-dsouza/storekeeper/internal/utils"
	"github.com/vaughan-dsouza/storekeeper/internal/validation"
)

type AuthHandler struct {
	svc     *services.AuthService
	cookies auth.CookiePolicy
	log     logging.Logger
}

func NewAuthHandler(svc *services.AuthService, cookies auth.CookiePolicy, log logging.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies, log: log}
}

// ----------- Response DTOs -------------

type sessionResp struct {
	User      any       `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// -------------- SIGN UP ----------------------

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req validation.SignupInput
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.svc.Signup(r.Context(), req)
	if errors.Is(err, common.ErrConflict) {
		utils.JSONError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.Info(r.Context(), "user signed up", "user_id", user.ID, "store_id", user.StoreID)
	utils.JSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginInput
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	res, err := h.svc.Login(r.Context(), req)
	if errors.Is(err, common.ErrUnauthorized) {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.cookies.Set(w, res.Token, res.ExpiresAt)
	utils.JSON(w, http.StatusOK, sessionResp{User: res.User, ExpiresAt: res.ExpiresAt})
}

// -------------- LOGOUT -----------------------

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	utils.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// -------------- SESSION (protected) ----------

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	utils.JSON(w, http.StatusOK, sessionResp{
		User: models.PublicUser{
			ID:      sess.UserID,
			Email:   sess.Email,
			Name:    sess.Name,
			StoreID: sess.StoreID,
			Role:    sess.Role,
		},
		ExpiresAt: sess.ExpiresAt,
	})
}
