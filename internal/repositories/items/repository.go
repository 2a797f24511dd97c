package items

import (
	"context"

	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

// Repository stores items. Every method is scoped by store id; a row of
// another store behaves exactly like a missing one.
type Repository interface {
	List(ctx context.Context, storeID string) ([]models.Item, error)
	ListLowStock(ctx context.Context, storeID string) ([]models.Item, error)
	Get(ctx context.Context, storeID, sku string) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, storeID, sku string) error
}
