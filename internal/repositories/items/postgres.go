package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/dbx"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, storeID string) ([]models.Item, error) {
	query :=
		`SELECT id, store_id, sku, name, quantity, min_stock, last_updated FROM items
		 WHERE store_id = $1
		 ORDER BY last_updated DESC, sku
		 `

	items := []models.Item{}
	if err := r.db.SelectContext(ctx, &items, query, storeID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) ListLowStock(ctx context.Context, storeID string) ([]models.Item, error) {
	query :=
		`SELECT id, store_id, sku, name, quantity, min_stock, last_updated FROM items
		 WHERE store_id = $1 AND quantity <= min_stock
		 ORDER BY quantity, sku
		 `

	items := []models.Item{}
	if err := r.db.SelectContext(ctx, &items, query, storeID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) Get(ctx context.Context, storeID, sku string) (*models.Item, error) {
	query :=
		`SELECT id, store_id, sku, name, quantity, min_stock, last_updated FROM items
		 WHERE store_id = $1 AND sku = $2
		 `

	item := &models.Item{}
	if err := r.db.GetContext(ctx, item, query, storeID, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// Create relies on items_store_sku_key: a second insert of the same
// (store, sku) yields common.ErrConflict, even under concurrent requests.
func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query :=
		`INSERT INTO items (store_id, sku, name, quantity, min_stock, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowxContext(ctx, query,
		item.StoreID, item.SKU, item.Name, item.Quantity, item.MinStock, item.LastUpdated).Scan(&item.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// Update replaces name, quantity, min_stock and last_updated of the row
// identified by (StoreID, SKU).
func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	query :=
		`UPDATE items SET name = $3, quantity = $4, min_stock = $5, last_updated = $6
		 WHERE store_id = $1 AND sku = $2
		 RETURNING id
		 `

	err := r.db.QueryRowxContext(ctx, query,
		item.StoreID, item.SKU, item.Name, item.Quantity, item.MinStock, item.LastUpdated).Scan(&item.ID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, storeID, sku string) error {
	query :=
		`DELETE FROM items
		 WHERE store_id = $1 AND sku = $2
		 `

	res, err := r.db.ExecContext(ctx, query, storeID, sku)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}
