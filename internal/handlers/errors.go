package handlers

import (
	"errors"
	"net/http"

	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/logging"
	"github.com/vaughan-dsouza/storekeeper/internal/utils"
	"github.com/vaughan-dsouza/storekeeper/internal/validation"
)

// writeError maps a service error to its HTTP status. Anything unknown is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	var fe *validation.FieldError
	switch {
	case errors.As(err, &fe):
		utils.JSON(w, http.StatusBadRequest, fe)
	case errors.Is(err, common.ErrUnauthorized):
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrConflict):
		utils.JSONError(w, http.StatusConflict, "already exists")
	default:
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}
