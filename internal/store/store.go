// Package store provides the PostgreSQL persistence layer for the tax
// engine. All queries are tenant-scoped and read-only: rate management is
// an upstream concern, this service only resolves what is already
// configured.
package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store executes the engine's lookups against PostgreSQL.
type Store struct {
	Pool *pgxpool.Pool
}

// New constructs a Store on top of an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}
