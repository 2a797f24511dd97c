package stores

import (
	"context"

	"github.com/vaughan-dsouza/storekeeper/internal/models"
)

type Repository interface {
	Create(ctx context.Context, store *models.Store) (*models.Store, error)
	Get(ctx context.Context, id string) (*models.Store, error)
}
