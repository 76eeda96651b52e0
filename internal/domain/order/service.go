package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brmartins/delivery-orders/internal/domain/catalog"
	"github.com/brmartins/delivery-orders/internal/domain/payment"
)

// Sentinel errors for order validation and lookup.
var (
	ErrEmptyCart = errors.New("cart must contain at least one line")
	ErrNotFound  = errors.New("order not found")
)

// InvalidQuantityError indicates a cart line has a quantity below 1.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductID)
}

// ProductNotFoundError indicates a requested product does not exist in the
// catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// ProductUnavailableError indicates the catalog marks a requested product as
// not purchasable.
type ProductUnavailableError struct {
	ProductID string
	Name      string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s (%s) is not available", e.Name, e.ProductID)
}

// CartLine is a caller-submitted product reference before catalog resolution.
type CartLine struct {
	ProductID string
	Quantity  int
}

// CreateOrderRequest holds the input for placing an order.
type CreateOrderRequest struct {
	OwnerID string
	Lines   []CartLine
	Method  payment.Method
	Payload payment.Payload
}

// PaymentResolver resolves a payment method and payload into an outcome.
type PaymentResolver interface {
	Resolve(ctx context.Context, method payment.Method, p payment.Payload) (*payment.Outcome, error)
}

// Service encapsulates order assembly: catalog resolution, total
// computation, payment resolution, and atomic persistence.
type Service struct {
	catalog  catalog.Repository
	payments PaymentResolver
	orders   Repository
}

// NewService creates an order Service with the required collaborators.
func NewService(catalog catalog.Repository, payments PaymentResolver, orders Repository) *Service {
	return &Service{
		catalog:  catalog,
		payments: payments,
		orders:   orders,
	}
}

// CreateOrder validates the cart, freezes catalog prices into order lines,
// resolves the payment, and persists the order with its lines atomically.
// Any failure aborts the whole workflow with nothing persisted.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Validate quantities before touching the catalog.
	ids := make([]string, len(req.Lines))
	for i, line := range req.Lines {
		if line.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
		ids[i] = line.ProductID
	}

	// Batch resolve every referenced product in a single query.
	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve products")
	}

	snapshots := make(map[string]*catalog.Product, len(fetched))
	for i := range fetched {
		snapshots[fetched[i].ID] = &fetched[i]
	}

	// Build lines positionally from the request so the persisted sequence is
	// deterministic regardless of catalog result order. Duplicate product IDs
	// stay independent lines.
	lines := make([]Line, len(req.Lines))
	total := decimal.Zero
	for i, line := range req.Lines {
		p, ok := snapshots[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if !p.Available {
			return nil, &ProductUnavailableError{ProductID: p.ID, Name: p.Name}
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		lines[i] = Line{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
			Product:   p,
		}
		total = total.Add(lineTotal)
	}

	// Payment failures propagate verbatim; no order artifact is created for
	// a rejected payment.
	outcome, err := s.payments.Resolve(ctx, req.Method, req.Payload)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:             uuid.New().String(),
		OwnerID:        req.OwnerID,
		Lines:          lines,
		TotalAmount:    total,
		PaymentMethod:  req.Method,
		PaymentDetails: outcome.Details,
		BillingAddress: outcome.BillingAddress,
		Status:         outcome.Status,
	}
	if err := s.orders.CreateWithLines(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// GetOrder returns a single order with its lines if it belongs to ownerID.
func (s *Service) GetOrder(ctx context.Context, orderID, ownerID string) (*Order, error) {
	return s.orders.GetByID(ctx, orderID, ownerID)
}

// ListOrders returns all orders owned by ownerID, newest first.
func (s *Service) ListOrders(ctx context.Context, ownerID string) ([]Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}
