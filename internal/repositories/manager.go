// Package repositories vends the repository implementations used by the
// services, bound to a plain connection or to a transaction.
package repositories

import (
	"github.com/vaughan-dsouza/storekeeper/internal/dbx"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories/items"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories/stores"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories/users"
)

type Manager interface {
	Users(db dbx.DBTX) users.Repository
	Stores(db dbx.DBTX) stores.Repository
	Items(db dbx.DBTX) items.Repository
}

// PostgresManager vends PostgreSQL-backed repositories.
type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

func (m *PostgresManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresManager) Stores(db dbx.DBTX) stores.Repository {
	return stores.NewPostgresRepository(db)
}

func (m *PostgresManager) Items(db dbx.DBTX) items.Repository {
	return items.NewPostgresRepository(db)
}
