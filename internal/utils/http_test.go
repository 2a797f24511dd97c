package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusTeapot, "nope")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
}

func TestDecodeJSON_IgnoresUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","storeId":"other"}`))
	rec := httptest.NewRecorder()

	require.NoError(t, DecodeJSON(rec, req, &v))
	assert.Equal(t, "x", v.Name)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	var v map[string]any

	rec := httptest.NewRecorder()
	err := DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`)), &v)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid JSON"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	err = DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", nil), &v)
	assert.ErrorIs(t, err, ErrEmptyBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
