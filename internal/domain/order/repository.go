package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Repository defines persistence operations for orders. Save upserts by
// order id, overwriting entirely on conflict. Get returns ErrNotFound for
// unknown ids. ByCustomer returns every order owned by the customer, open
// and submitted, in unspecified order.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	ByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)
}
