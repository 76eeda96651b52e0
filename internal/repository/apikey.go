package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brmartins/delivery-orders/internal/domain/auth"
)

const findCallerByKeyHashSQL = `SELECT u.id, k.key_hash, u.name, u.role
	FROM api_keys k
	JOIN users u ON u.id = k.user_id
	WHERE k.key_hash = $1`

// ErrAPIKeyNotFound is returned when no caller matches the given key hash.
var ErrAPIKeyNotFound = errors.New("api key not found")

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository resolves API key hashes to callers via PostgreSQL.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository returns an APIKeyRepository that uses the given pool.
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

// FindByKeyHash returns the caller owning the API key with the given hash.
func (r *APIKeyRepository) FindByKeyHash(ctx context.Context, hash string) (*auth.Caller, error) {
	var c auth.Caller
	err := r.pool.QueryRow(ctx, findCallerByKeyHashSQL, hash).Scan(&c.ID, &c.KeyHash, &c.Name, &c.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("finding api key: %w", err)
	}
	return &c, nil
}
