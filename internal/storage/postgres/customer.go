package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/hexshop/internal/domain/customer"
)

const (
	saveCustomerSQL = `INSERT INTO customers (id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`

	getCustomerSQL = `SELECT id, name, email FROM customers WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Save upserts the customer by id.
func (r *CustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	_, err := r.pool.Exec(ctx, saveCustomerSQL, c.ID, c.Name, c.Email.String())
	if err != nil {
		return errors.Wrapf(err, "saving customer %q", c.ID)
	}
	return nil
}

// Get returns the customer with the given id.
func (r *CustomerRepository) Get(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	var (
		cid   uuid.UUID
		name  string
		email string
	)
	err := r.pool.QueryRow(ctx, getCustomerSQL, id).Scan(&cid, &name, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting customer %q", id)
	}
	return customer.Restore(cid, name, email)
}
