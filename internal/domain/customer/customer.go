// Package customer holds the Customer entity and its persistence port.
package customer

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	// ErrInvalidEmail is returned when an email address fails validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
)

// Email is a validated email address. Validation happens at construction
// only; there is no further lifecycle.
type Email struct {
	value string
}

// NewEmail validates and wraps a raw email address.
func NewEmail(value string) (Email, error) {
	if !strings.Contains(value, "@") {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: value}, nil
}

func (e Email) String() string { return e.value }

// Customer is created once via New and immutable afterwards.
type Customer struct {
	ID    uuid.UUID
	Name  string
	Email Email
}

// New creates a customer with a fresh identifier.
func New(name, email string) (*Customer, error) {
	e, err := NewEmail(email)
	if err != nil {
		return nil, err
	}
	return &Customer{ID: uuid.New(), Name: name, Email: e}, nil
}

// Restore reconstructs a customer from persisted state.
func Restore(id uuid.UUID, name, email string) (*Customer, error) {
	e, err := NewEmail(email)
	if err != nil {
		return nil, errors.Wrapf(err, "customer %s", id)
	}
	return &Customer{ID: id, Name: name, Email: e}, nil
}

// Repository defines persistence operations for customers.
type Repository interface {
	Save(ctx context.Context, c *Customer) error
	Get(ctx context.Context, id uuid.UUID) (*Customer, error)
}
