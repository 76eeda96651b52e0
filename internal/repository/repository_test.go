package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brmartins/delivery-orders/internal/domain/catalog"
	"github.com/brmartins/delivery-orders/internal/domain/order"
)

// Non-uuid identifiers must short-circuit to not-found before any query is
// issued; otherwise the text would fail the server-side uuid cast and
// surface as an internal error.

func TestCatalogGetByID_NonUUID(t *testing.T) {
	repo := NewCatalogRepository(nil)

	p, err := repo.GetByID(context.Background(), "ghost")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalogGetByIDs_AllNonUUID(t *testing.T) {
	repo := NewCatalogRepository(nil)

	products, err := repo.GetByIDs(context.Background(), []string{"ghost", "also-not-a-uuid"})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestOrderGetByID_NonUUID(t *testing.T) {
	repo := NewOrderRepository(nil)

	o, err := repo.GetByID(context.Background(), "abc", "5c2b9f3e-0a51-4f84-9f1d-0a4c9f1e2b01")
	assert.Nil(t, o)
	assert.ErrorIs(t, err, order.ErrNotFound)
}
