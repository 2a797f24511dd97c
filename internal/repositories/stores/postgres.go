package stores

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

func (r *PostgresRepository) Create(ctx context.Context, store *models.Store) (*models.Store, error) {
	query :=
		`INSERT INTO stores (id, name)
		 VALUES ($1, $2)
		 RETURNING created_at
		 `

	if err := r.db.QueryRowxContext(ctx, query, store.ID, store.Name).Scan(&store.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return store, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Store, error) {
	query :=
		`SELECT id, name, created_at FROM stores
		 WHERE id = $1
		 `

	store := &models.Store{}
	if err := r.db.GetContext(ctx, store, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return store, nil
}
