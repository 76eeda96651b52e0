package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brmartins/delivery-orders/internal/domain/catalog"
	"github.com/brmartins/delivery-orders/internal/domain/payment"
)

// --- Mock implementations ---

type mockCatalog struct {
	byID   map[string]catalog.Product
	getErr error
}

func (m *mockCatalog) List(_ context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockCatalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (m *mockCatalog) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	seen := make(map[string]bool, len(ids))
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

type mockResolver struct {
	outcome *payment.Outcome
	err     error
	calls   int
}

func (m *mockResolver) Resolve(_ context.Context, _ payment.Method, _ payment.Payload) (*payment.Outcome, error) {
	m.calls++
	return m.outcome, m.err
}

type mockOrderRepo struct {
	lastOrder *Order
	err       error
}

func (m *mockOrderRepo) CreateWithLines(_ context.Context, o *Order) error {
	if m.err != nil {
		return m.err
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, orderID, ownerID string) (*Order, error) {
	if m.lastOrder != nil && m.lastOrder.ID == orderID && m.lastOrder.OwnerID == ownerID {
		return m.lastOrder, nil
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) ListByOwner(_ context.Context, ownerID string) ([]Order, error) {
	if m.lastOrder != nil && m.lastOrder.OwnerID == ownerID {
		return []Order{*m.lastOrder}, nil
	}
	return nil, nil
}

// --- Helpers ---

func newProduct(id, name, price string, available bool) catalog.Product {
	return catalog.Product{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  "burgers",
		Available: available,
	}
}

func newCatalog(products ...catalog.Product) *mockCatalog {
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockCatalog{byID: byID}
}

func pendingResolver(details string) *mockResolver {
	return &mockResolver{outcome: &payment.Outcome{Details: details, Status: payment.StatusPending}}
}

// --- Tests ---

func TestCreateOrder_EmptyCart(t *testing.T) {
	svc := NewService(newCatalog(), pendingResolver("x"), &mockOrderRepo{})

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{OwnerID: "u1", Method: payment.MethodPix})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrder_InvalidQuantity(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "25.90", true)
	repo := &mockOrderRepo{}
	svc := NewService(newCatalog(p1), pendingResolver("x"), repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 0}},
		Method:  payment.MethodPix,
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "p1", iqErr.ProductID)
	assert.Nil(t, repo.lastOrder)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(newCatalog(), pendingResolver("x"), repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "missing", Quantity: 1}},
		Method:  payment.MethodPix,
	})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "missing", pnfErr.ProductID)
	assert.Nil(t, repo.lastOrder)
}

func TestCreateOrder_ProductUnavailable(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "25.90", false)
	svc := NewService(newCatalog(p1), pendingResolver("x"), &mockOrderRepo{})

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 1}},
		Method:  payment.MethodPix,
	})

	var puErr *ProductUnavailableError
	require.ErrorAs(t, err, &puErr)
	assert.Equal(t, "p1", puErr.ProductID)
}

func TestCreateOrder_PixScenario(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "25.90", true)
	repo := &mockOrderRepo{}
	svc := NewService(newCatalog(p1), pendingResolver("pix-artifact"), repo)

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 2}},
		Method:  payment.MethodPix,
	})

	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.True(t, decimal.RequireFromString("51.80").Equal(o.Lines[0].LineTotal))
	assert.True(t, decimal.RequireFromString("51.80").Equal(o.TotalAmount))
	assert.Equal(t, payment.StatusPending, o.Status)
	assert.Equal(t, "pix-artifact", o.PaymentDetails)
	assert.Equal(t, "u1", o.OwnerID)
	assert.NotEmpty(t, o.ID)
	assert.Same(t, repo.lastOrder, o)
}

func TestCreateOrder_PriceFrozenAtResolution(t *testing.T) {
	cat := newCatalog(newProduct("p1", "X-Burger", "25.90", true))
	repo := &mockOrderRepo{}
	svc := NewService(cat, pendingResolver("x"), repo)

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 1}},
		Method:  payment.MethodPix,
	})
	require.NoError(t, err)

	// Catalog price drift after creation must not affect the stored line.
	cat.byID["p1"] = newProduct("p1", "X-Burger", "99.99", true)
	assert.True(t, decimal.RequireFromString("25.90").Equal(o.Lines[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("25.90").Equal(o.TotalAmount))
}

func TestCreateOrder_DuplicateProductsStayIndependentLines(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "10.00", true)
	p2 := newProduct("p2", "Fries", "5.50", true)
	repo := &mockOrderRepo{}
	svc := NewService(newCatalog(p1, p2), pendingResolver("x"), repo)

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines: []CartLine{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 2},
			{ProductID: "p1", Quantity: 3},
		},
		Method: payment.MethodPix,
	})

	require.NoError(t, err)
	require.Len(t, o.Lines, 3)
	assert.Equal(t, "p1", o.Lines[0].ProductID)
	assert.Equal(t, "p2", o.Lines[1].ProductID)
	assert.Equal(t, "p1", o.Lines[2].ProductID)
	assert.True(t, decimal.RequireFromString("51.00").Equal(o.TotalAmount))
}

func TestCreateOrder_PaymentFailureAbortsBeforePersist(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "10.00", true)
	repo := &mockOrderRepo{}
	rejection := &payment.RejectedError{Method: payment.MethodCreditCard, Reason: "card number must be 16 digits"}
	svc := NewService(newCatalog(p1), &mockResolver{err: rejection}, repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 1}},
		Method:  payment.MethodCreditCard,
	})

	var rejErr *payment.RejectedError
	require.ErrorAs(t, err, &rejErr)
	assert.Nil(t, repo.lastOrder)
}

func TestCreateOrder_PaidOutcomeCarriedOntoOrder(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "10.00", true)
	repo := &mockOrderRepo{}
	rv := &mockResolver{outcome: &payment.Outcome{Details: "APPROVED", Status: payment.StatusPaid}}
	svc := NewService(newCatalog(p1), rv, repo)

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 1}},
		Method:  payment.MethodCreditCard,
	})

	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, o.Status)
	assert.Equal(t, "APPROVED", o.PaymentDetails)
	assert.Nil(t, o.BillingAddress)
	assert.Equal(t, 1, rv.calls)
}

func TestCreateOrder_BoletoOutcomeKeepsBillingAddress(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "10.00", true)
	addr := &payment.BillingAddress{
		Street: "Rua das Flores, 123", Neighborhood: "Centro",
		City: "São Paulo", State: "SP", ZipCode: "01234-567",
	}
	rv := &mockResolver{outcome: &payment.Outcome{
		Details: "34191.12345", Status: payment.StatusPending, BillingAddress: addr,
	}}
	svc := NewService(newCatalog(p1), rv, &mockOrderRepo{})

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 1}},
		Method:  payment.MethodBoleto,
	})

	require.NoError(t, err)
	assert.Equal(t, addr, o.BillingAddress)
	assert.Equal(t, payment.StatusPending, o.Status)
}

func TestCreateOrder_PersistenceFailure(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "10.00", true)
	svc := NewService(
		newCatalog(p1),
		pendingResolver("x"),
		&mockOrderRepo{err: errors.New("db write failed")},
	)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 1}},
		Method:  payment.MethodPix,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

func TestGetOrder_OwnershipScoped(t *testing.T) {
	p1 := newProduct("p1", "X-Burger", "10.00", true)
	repo := &mockOrderRepo{}
	svc := NewService(newCatalog(p1), pendingResolver("x"), repo)

	created, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OwnerID: "u1",
		Lines:   []CartLine{{ProductID: "p1", Quantity: 1}},
		Method:  payment.MethodPix,
	})
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), created.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), created.ID, "someone-else")
	require.ErrorIs(t, err, ErrNotFound)
}
