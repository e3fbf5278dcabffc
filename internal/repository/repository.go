package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinenote/cinenote-api/internal/store"
)

// Repository aggregates the postgres-backed store implementations.
type Repository struct {
	Movies  *MoviesRepository
	Reviews *ReviewsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Movies:  &MoviesRepository{pool: pool},
		Reviews: &ReviewsRepository{pool: pool},
	}
}
