package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) form(path string, values url.Values, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: e.cookies.Name, Value: session})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) page(path, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != "" {
		req.AddCookie(&http.Cookie{Name: e.cookies.Name, Value: session})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(e *env, rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == e.cookies.Name {
			return c.Value
		}
	}
	return ""
}

func TestPages_GuardRedirects(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.page("/", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = e.page("/dashboard", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = e.form("/dashboard/items", url.Values{"name": {"Widget"}}, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, e.page("/login", "").Code)
	assert.Equal(t, http.StatusOK, e.page("/signup", "").Code)

	tok := e.account(t, "Ann", "ann@example.com")
	for _, p := range []string{"/login", "/signup"} {
		rec = e.page(p, tok)
		assert.Equal(t, http.StatusSeeOther, rec.Code, p)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"), p)
	}

	// an expired or forged cookie counts as signed out
	rec = e.page("/dashboard", "not-a-token")
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestPages_SignupLoginAndManageItems(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.form("/signup", url.Values{
		"name": {"Ann"}, "email": {"ann@example.com"}, "password": {"secret1"}, "storeName": {"Corner Shop"},
	}, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	tok := sessionCookie(e, rec)
	require.NotEmpty(t, tok)

	rec = e.form("/dashboard/items", url.Values{
		"name": {"Widget"}, "sku": {"abc_1"}, "quantity": {"3"}, "minStock": {""},
	}, tok)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = e.page("/dashboard", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ABC_1")
	assert.Contains(t, body, "Low stock:", "quantity 3 is below the default minimum of 5")

	rec = e.form("/dashboard/items", url.Values{
		"name": {"Other"}, "sku": {"ABC_1"}, "quantity": {"1"},
	}, tok)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "SKU already exists in this store")

	rec = e.form("/dashboard/items", url.Values{
		"name": {"Widget"}, "sku": {"BAD-SKU"}, "quantity": {"1"},
	}, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "value=\"BAD-SKU\"")

	rec = e.form("/dashboard/items/ABC_1", url.Values{"quantity": {"50"}}, tok)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = e.do(http.MethodGet, "/api/items/ABC_1", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.EqualValues(t, 50, got["quantity"])
	assert.Equal(t, "Widget", got["name"])
	assert.EqualValues(t, 5, got["minStock"])

	rec = e.form("/dashboard/items/ABC_1/delete", url.Values{}, tok)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/items/ABC_1", "", tok).Code)

	rec = e.form("/logout", url.Values{}, tok)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestPages_LoginFailures(t *testing.T) {
	e := newEnv(t, nil)
	e.account(t, "Ann", "ann@example.com")

	rec := e.form("/login", url.Values{"email": {"ann@example.com"}, "password": {"wrong-one"}}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Empty(t, sessionCookie(e, rec))

	rec = e.form("/login", url.Values{"email": {"ann@example.com"}, "password": {"secret1"}}, "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotEmpty(t, sessionCookie(e, rec))

	rec = e.page("/login?error=oauth", "")
	assert.Contains(t, rec.Body.String(), "Google sign-in failed")
}

func TestPages_DashboardSorting(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.account(t, "Ann", "ann@example.com")
	for _, body := range []string{
		`{"name":"Zeta","sku":"ZZZ","quantity":1}`,
		`{"name":"Alpha","sku":"AAA","quantity":9}`,
	} {
		require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/items", body, tok).Code)
	}

	body := e.page("/dashboard", tok).Body.String()
	assert.Less(t, strings.Index(body, "edit-AAA"), strings.Index(body, "edit-ZZZ"))

	body = e.page("/dashboard?sort=name&dir=desc", tok).Body.String()
	assert.Less(t, strings.Index(body, "edit-ZZZ"), strings.Index(body, "edit-AAA"))
}
