package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
	"github.com/vaughan-dsouza/storekeeper/internal/services"
	"github.com/vaughan-dsouza/storekeeper/internal/utils"
	"github.com/vaughan-dsouza/storekeeper/internal/validation"
)

// ItemHandler serves /api/items. Routes are mounted behind
// Sessions.RequireAPI, so a session is always present.
type ItemHandler struct {
	svc *services.ItemService
	log logging.Logger
}

func NewItemHandler(svc *services.ItemService, log logging.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, log: log}
}

func storeID(r *http.Request) (string, bool) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		return "", false
	}
	return sess.StoreID, true
}

// ---------------------- LIST ----------------------

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.svc.List(r.Context(), store)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, items)
}

func (h *ItemHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.svc.LowStock(r.Context(), store)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, items)
}

// ---------------------- GET ONE ----------------------

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	item, err := h.svc.Get(r.Context(), store, chi.URLParam(r, "sku"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, item)
}

// ---------------------- CREATE ----------------------

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body validation.ItemInput
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	item, err := h.svc.Create(r.Context(), store, body)
	if errors.Is(err, common.ErrConflict) {
		utils.JSONError(w, http.StatusConflict, "SKU already exists in this store")
		return
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.Info(r.Context(), "item created", "store_id", store, "sku", item.SKU)
	utils.JSON(w, http.StatusCreated, item)
}

// ---------------------- UPDATE ----------------------

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body validation.ItemInput
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	item, err := h.svc.Update(r.Context(), store, chi.URLParam(r, "sku"), body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	utils.JSON(w, http.StatusOK, item)
}

// ---------------------- DELETE ----------------------

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store, ok := storeID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sku := chi.URLParam(r, "sku")
	if err := h.svc.Delete(r.Context(), store, sku); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.Info(r.Context(), "item deleted", "store_id", store, "sku", validation.NormalizeSKU(sku))
	utils.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ---------------------- EXPORT ----------------------

func (h *ItemHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", services.WriteCSV)
}

func (h *ItemHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", services.WriteXLSX)
}

func (h *ItemHandler) export(w http.ResponseWriter, r *http.Request, ext, contentType string,
	write func(io.Writer, []models.Item) error) {
	store, ok := storeID(r)
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.svc.List(r.Context(), store)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	// buffered so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := write(&buf, items); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"inventory_%s.%s\"", time.Now().Format("20060102"), ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
