package models

import "time"

// Item is one inventory line. ID and StoreID never leave the server.
type Item struct {
	ID          int64     `db:"id" json:"-"`
	StoreID     string    `db:"store_id" json:"-"`
	SKU         string    `db:"sku" json:"sku"`
	Name        string    `db:"name" json:"name"`
	Quantity    int       `db:"quantity" json:"quantity"`
	MinStock    int       `db:"min_stock" json:"minStock"`
	LastUpdated time.Time `db:"last_updated" json:"lastUpdated"`
}

// LowStock reports whether the item is at or below its minimum.
func (i *Item) LowStock() bool {
	return i.Quantity <= i.MinStock
}
