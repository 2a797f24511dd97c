package services

import (
	"context"
	"time"

	"github.com/vaughan-dsouza/storekeeper/internal/dbx"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories"
	"github.com/vaughan-dsouza/storekeeper/internal/validation"
)

// ItemService is the store-scoped item CRUD. Every method takes the store
// id resolved from the caller's session; SKUs are normalized before lookup.
type ItemService struct {
	db    dbx.DBTX
	repos repositories.Manager
	now   func() time.Time
}

func NewItemService(db dbx.DBTX, repos repositories.Manager) *ItemService {
	return &ItemService{db: db, repos: repos, now: time.Now}
}

// WithClock replaces the time source used for lastUpdated.
func (s *ItemService) WithClock(now func() time.Time) *ItemService {
	s.now = now
	return s
}

func (s *ItemService) List(ctx context.Context, storeID string) ([]models.Item, error) {
	return s.repos.Items(s.db).List(ctx, storeID)
}

func (s *ItemService) LowStock(ctx context.Context, storeID string) ([]models.Item, error) {
	return s.repos.Items(s.db).ListLowStock(ctx, storeID)
}

func (s *ItemService) Get(ctx context.Context, storeID, sku string) (*models.Item, error) {
	return s.repos.Items(s.db).Get(ctx, storeID, validation.NormalizeSKU(sku))
}

// Create validates in and inserts it. A taken SKU yields common.ErrConflict.
func (s *ItemService) Create(ctx context.Context, storeID string, in validation.ItemInput) (*models.Item, error) {
	item, err := validation.ValidateItem(in)
	if err != nil {
		return nil, err
	}

	item.StoreID = storeID
	item.LastUpdated = s.timestamp()

	return s.repos.Items(s.db).Create(ctx, &item)
}

// Update merges in over the stored item named by sku, validates the result
// and replaces it. The SKU in the path wins over one in the body.
func (s *ItemService) Update(ctx context.Context, storeID, sku string, in validation.ItemInput) (*models.Item, error) {
	repo := s.repos.Items(s.db)

	sku = validation.NormalizeSKU(sku)
	current, err := repo.Get(ctx, storeID, sku)
	if err != nil {
		return nil, err
	}

	in.SKU = &sku
	item, err := validation.ValidateItem(in.Merge(*current))
	if err != nil {
		return nil, err
	}

	item.StoreID = storeID
	item.LastUpdated = s.timestamp()

	return repo.Update(ctx, &item)
}

func (s *ItemService) Delete(ctx context.Context, storeID, sku string) error {
	return s.repos.Items(s.db).Delete(ctx, storeID, validation.NormalizeSKU(sku))
}

// timestamp is truncated to what a timestamptz column keeps.
func (s *ItemService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
