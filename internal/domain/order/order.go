package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brmartins/delivery-orders/internal/domain/catalog"
	"github.com/brmartins/delivery-orders/internal/domain/payment"
)

// Line is a persisted order line item. UnitPrice is the catalog price frozen
// at order-creation time; LineTotal = UnitPrice * Quantity.
type Line struct {
	ID        string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal

	// Product is the resolved snapshot attached for display. It is not part
	// of the persisted line beyond ProductID.
	Product *catalog.Product
}

// Order is the aggregate root. An order always has at least one line and its
// TotalAmount is the exact sum of line totals at creation time. Orders are
// written once; lines never change independently of their order.
type Order struct {
	ID             string
	OwnerID        string
	Lines          []Line
	TotalAmount    decimal.Decimal
	PaymentMethod  payment.Method
	PaymentDetails string
	BillingAddress *payment.BillingAddress
	Status         payment.Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateWithLines persists the order and all of its lines as one atomic
	// unit, assigning line identifiers and timestamps. Nothing is committed
	// if any part fails.
	CreateWithLines(ctx context.Context, o *Order) error

	// GetByID returns the order with its lines only if it belongs to ownerID;
	// otherwise ErrNotFound. Ownership is part of the read contract.
	GetByID(ctx context.Context, orderID, ownerID string) (*Order, error)

	// ListByOwner returns all orders owned by ownerID with their lines,
	// newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
}
