package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/hexshop/internal/domain/order"
)

const (
	saveOrderSQL = `INSERT INTO orders (id, customer_id, submitted, items, total, currency, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE
		SET customer_id = EXCLUDED.customer_id,
		    submitted   = EXCLUDED.submitted,
		    items       = EXCLUDED.items,
		    total       = EXCLUDED.total,
		    currency    = EXCLUDED.currency,
		    updated_at  = now()`

	getOrderSQL = `SELECT id, customer_id, submitted, items FROM orders WHERE id = $1`

	ordersByCustomerSQL = `SELECT id, customer_id, submitted, items FROM orders WHERE customer_id = $1`
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

// Save upserts the order by id, overwriting the stored row entirely. The
// items are serialized to JSON for the JSONB column; the denormalized
// total is NULL when no single-currency total exists.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	s := o.Snapshot()

	itemsJSON, err := json.Marshal(s.Items)
	if err != nil {
		return errors.Wrap(err, "marshaling order items")
	}

	var (
		total    decimal.NullDecimal
		currency *string
	)
	if t, err := o.Total(); err == nil {
		total = decimal.NullDecimal{Decimal: t.Decimal(), Valid: true}
		c := t.Currency()
		currency = &c
	}

	_, err = r.pool.Exec(ctx, saveOrderSQL,
		s.ID, s.CustomerID, s.Submitted, itemsJSON, total, currency,
	)
	if err != nil {
		return errors.Wrapf(err, "saving order %q", s.ID)
	}

	return nil
}

// Get reconstructs the order with the given id.
func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, getOrderSQL, id)

	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %q", id)
	}
	return o, nil
}

// ByCustomer reconstructs every order owned by customerID.
func (r *OrderRepository) ByCustomer(ctx context.Context, customerID uuid.UUID) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, ordersByCustomerSQL, customerID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders for customer %q", customerID)
	}
	defer rows.Close()

	var out []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scanning order for customer %q", customerID)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating orders")
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		s         order.Snapshot
		itemsJSON []byte
	)
	if err := row.Scan(&s.ID, &s.CustomerID, &s.Submitted, &itemsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &s.Items); err != nil {
		return nil, errors.Wrap(err, "unmarshaling order items")
	}
	return order.FromSnapshot(s)
}
