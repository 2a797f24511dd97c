package ui

import (
	"net/url"
	"sort"
	"strings"

	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

type LoginPage struct {
	Email         string
	Error         string
	GoogleEnabled bool
}

type SignupPage struct {
	Name      string
	Email     string
	StoreName string
	Error     string
}

// ItemForm echoes the add-item form back after a failed submit.
type ItemForm struct {
	Name     string
	SKU      string
	Quantity string
	MinStock string
}

type DashboardPage struct {
	User     models.PublicUser
	Items    []models.Item
	LowStock []models.Item
	Sort     string
	Dir      string
	Error    string
	Form     ItemForm
}

// SortKeys are the dashboard columns that can be sorted on.
var SortKeys = map[string]func(a, b *models.Item) int{
	"name":        func(a, b *models.Item) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	"sku":         func(a, b *models.Item) int { return strings.Compare(a.SKU, b.SKU) },
	"quantity":    func(a, b *models.Item) int { return a.Quantity - b.Quantity },
	"minStock":    func(a, b *models.Item) int { return a.MinStock - b.MinStock },
	"lastUpdated": func(a, b *models.Item) int { return a.LastUpdated.Compare(b.LastUpdated) },
}

// SortItems orders items in place by key and dir ("asc" or "desc") and
// returns the key and dir actually applied. Unknown keys fall back to name.
func SortItems(items []models.Item, key, dir string) (string, string) {
	cmp, ok := SortKeys[key]
	if !ok {
		key = "name"
		cmp = SortKeys[key]
	}
	if dir != "desc" {
		dir = "asc"
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(&items[i], &items[j])
		if dir == "desc" {
			return c > 0
		}
		return c < 0
	})
	return key, dir
}

// SortHref is the link for a column header: clicking the active column
// flips the direction.
func (p DashboardPage) SortHref(key string) string {
	dir := "asc"
	if p.Sort == key && p.Dir == "asc" {
		dir = "desc"
	}
	return "/dashboard?" + url.Values{"sort": {key}, "dir": {dir}}.Encode()
}

// Arrow marks the active sort column.
func (p DashboardPage) Arrow(key string) string {
	if p.Sort != key {
		return ""
	}
	if p.Dir == "desc" {
		return "▼"
	}
	return "▲"
}
