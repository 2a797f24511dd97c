package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storekeeper/internal/config"
)

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	// Parse DSN → pgx config struct
	pgxCfg, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
	}

	// Fail fast on startup if PG is unreachable
	pgxCfg.ConnectTimeout = 5 * time.Second

	// Wrap pgx's stdlib adapter in sqlx for struct scanning
	db := sqlx.NewDb(stdlib.OpenDB(*pgxCfg), "pgx")

	// ---- Connection Pool Settings ----
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	// ---- Connectivity Check ----
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: failed to connect to Postgres: %w", err)
	}

	return db, nil
}

var (
	shared    *sqlx.DB
	sharedErr error
	once      sync.Once
)

// Shared returns the process-wide pool, connecting on first use. Concurrent
// first callers block on the same initialization and receive the same pool
// (or the same error); cfg is ignored after the first call.
func Shared(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	once.Do(func() {
		shared, sharedErr = Connect(ctx, cfg)
	})
	return shared, sharedErr
}
