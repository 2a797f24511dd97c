package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

func sample() []models.Item {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Item{
		{SKU: "B_2", Name: "bolt", Quantity: 3, MinStock: 5, LastUpdated: t0.Add(2 * time.Hour)},
		{SKU: "A_1", Name: "Anchor", Quantity: 10, MinStock: 5, LastUpdated: t0},
		{SKU: "C_3", Name: "Clamp", Quantity: 7, MinStock: 1, LastUpdated: t0.Add(time.Hour)},
	}
}

func skus(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.SKU
	}
	return out
}

func TestSortItems(t *testing.T) {
	cases := []struct {
		key, dir string
		want     []string
		applied  string
	}{
		{"name", "asc", []string{"A_1", "B_2", "C_3"}, "name"},
		{"quantity", "desc", []string{"A_1", "C_3", "B_2"}, "quantity"},
		{"minStock", "asc", []string{"C_3", "B_2", "A_1"}, "minStock"},
		{"lastUpdated", "desc", []string{"B_2", "C_3", "A_1"}, "lastUpdated"},
		{"bogus", "sideways", []string{"A_1", "B_2", "C_3"}, "name"},
	}
	for _, c := range cases {
		items := sample()
		key, dir := SortItems(items, c.key, c.dir)
		assert.Equal(t, c.want, skus(items), "%s %s", c.key, c.dir)
		assert.Equal(t, c.applied, key)
		assert.Contains(t, []string{"asc", "desc"}, dir)
	}
}

func TestDashboardPage_SortHref(t *testing.T) {
	p := DashboardPage{Sort: "name", Dir: "asc"}
	assert.Equal(t, "/dashboard?dir=desc&sort=name", p.SortHref("name"))
	assert.Equal(t, "/dashboard?dir=asc&sort=sku", p.SortHref("sku"))
	assert.Equal(t, "▲", p.Arrow("name"))
	assert.Equal(t, "", p.Arrow("sku"))
}

func TestRender_Dashboard(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	items := sample()
	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusOK, "dashboard", DashboardPage{
		User:     models.PublicUser{Name: "Ann", Role: models.RoleOwner},
		Items:    items,
		LowStock: items[:1],
		Sort:     "name",
		Dir:      "asc",
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "Low stock:")
	assert.Contains(t, body, `action="/dashboard/items/B_2/delete"`)
	assert.Contains(t, body, `class="low"`)
	assert.Contains(t, body, "Ann")
}

func TestRender_EscapesUserInput(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusBadRequest, "login", LoginPage{Email: `"><script>x</script>`, Error: "Invalid email or password"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>x</script>")
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Error(t, r.Render(httptest.NewRecorder(), http.StatusOK, "nope", nil))
}

func TestRender_SignedIn(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "signedin", nil))
	assert.Contains(t, rec.Body.String(), `<meta http-equiv="refresh" content="0;url=/dashboard">`)
}
