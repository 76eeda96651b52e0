package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brmartins/delivery-orders/internal/domain/catalog"
	"github.com/brmartins/delivery-orders/internal/domain/order"
	"github.com/brmartins/delivery-orders/internal/domain/payment"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, owner_id, total_amount, payment_method, payment_details, billing_address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, position, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	orderColumns = `id, owner_id, total_amount, payment_method, payment_details, billing_address, status, created_at, updated_at`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND owner_id = $2`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`

	listOrderItemsSQL = `SELECT i.order_id, i.id, i.product_id, i.position, i.quantity, i.unit_price, i.line_total,
			p.id, p.name, p.description, p.price, p.category, p.image_url, p.available, p.created_at, p.updated_at
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.position`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// billingAddressJSON is the stored shape of a billing address. The JSONB
// column keeps the structure queryable while the domain treats it as part
// of the payment outcome.
type billingAddressJSON struct {
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

// CreateWithLines persists the order and its lines in a single transaction.
// Line IDs and order timestamps are assigned here and written back onto o.
// A failure at any point rolls the whole write back.
func (r *OrderRepository) CreateWithLines(ctx context.Context, o *order.Order) error {
	if len(o.Lines) == 0 {
		return errors.New("order must have at least one line")
	}

	addrJSON, err := marshalBillingAddress(o.BillingAddress)
	if err != nil {
		return fmt.Errorf("marshaling billing address: %w", err)
	}

	now := time.Now().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.OwnerID, o.TotalAmount, string(o.PaymentMethod),
		o.PaymentDetails, addrJSON, string(o.Status), now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		_, err = tx.Exec(ctx, insertOrderItemSQL,
			line.ID, o.ID, line.ProductID, i, line.Quantity, line.UnitPrice, line.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("inserting order item %d for order %q: %w", i, o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}

	o.CreatedAt = now
	o.UpdatedAt = now
	return nil
}

// GetByID returns the order with its lines only if it belongs to ownerID.
// An existing order owned by someone else is indistinguishable from a
// missing one: both return order.ErrNotFound, as does a non-uuid orderID.
func (r *OrderRepository) GetByID(ctx context.Context, orderID, ownerID string) (*order.Order, error) {
	if uuid.Validate(orderID) != nil {
		return nil, order.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, getOrderSQL, orderID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}

	if err := r.attachLines(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByOwner returns all orders owned by ownerID with their lines attached,
// newest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for owner %q: %w", ownerID, err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for owner %q: %w", ownerID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachLines(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachLines loads the line items (with product snapshots) for every given
// order in one query and attaches them in stored position order.
func (r *OrderRepository) attachLines(ctx context.Context, orders []*order.Order) error {
	byID := make(map[string]*order.Order, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids[i] = o.ID
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID  string
			line     order.Line
			position int
			product  catalog.Product
		)
		err := rows.Scan(
			&orderID, &line.ID, &line.ProductID, &position, &line.Quantity,
			&line.UnitPrice, &line.LineTotal,
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Category, &product.ImageURL, &product.Available,
			&product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}

		line.Product = &product
		if o, ok := byID[orderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		method   string
		status   string
		addrJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.OwnerID, &o.TotalAmount, &method, &o.PaymentDetails,
		&addrJSON, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	o.PaymentMethod = payment.Method(method)
	o.Status = payment.Status(status)
	o.BillingAddress, err = unmarshalBillingAddress(addrJSON)
	return o, err
}

func marshalBillingAddress(a *payment.BillingAddress) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(billingAddressJSON{
		Street:       a.Street,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		ZipCode:      a.ZipCode,
	})
}

func unmarshalBillingAddress(data []byte) (*payment.BillingAddress, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var stored billingAddressJSON
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("unmarshaling billing address: %w", err)
	}
	return &payment.BillingAddress{
		Street:       stored.Street,
		Complement:   stored.Complement,
		Neighborhood: stored.Neighborhood,
		City:         stored.City,
		State:        stored.State,
		ZipCode:      stored.ZipCode,
	}, nil
}
