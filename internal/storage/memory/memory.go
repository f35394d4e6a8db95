// Package memory provides in-process repository adapters backed by
// mutex-guarded maps. Aggregates are stored as snapshots and reconstructed
// on every read, so no caller ever shares a live aggregate instance.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/xenking/hexshop/internal/domain/customer"
	"github.com/xenking/hexshop/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository in memory.
type OrderRepository struct {
	mu    sync.RWMutex
	store map[uuid.UUID]order.Snapshot
}

// NewOrderRepository returns an empty in-memory order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{store: make(map[uuid.UUID]order.Snapshot)}
}

// Save upserts the order by id, overwriting any previous state.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[o.ID()] = o.Snapshot()
	return nil
}

// Get reconstructs the order with the given id.
func (r *OrderRepository) Get(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	s, ok := r.store[id]
	r.mu.RUnlock()
	if !ok {
		return nil, order.ErrNotFound
	}
	return order.FromSnapshot(s)
}

// ByCustomer reconstructs every order owned by customerID.
func (r *OrderRepository) ByCustomer(_ context.Context, customerID uuid.UUID) ([]*order.Order, error) {
	r.mu.RLock()
	snapshots := make([]order.Snapshot, 0, len(r.store))
	for _, s := range r.store {
		if s.CustomerID == customerID {
			snapshots = append(snapshots, s)
		}
	}
	r.mu.RUnlock()

	out := make([]*order.Order, 0, len(snapshots))
	for _, s := range snapshots {
		o, err := order.FromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository in memory.
type CustomerRepository struct {
	mu    sync.RWMutex
	store map[uuid.UUID]customer.Customer
}

// NewCustomerRepository returns an empty in-memory customer repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{store: make(map[uuid.UUID]customer.Customer)}
}

// Save upserts the customer by id.
func (r *CustomerRepository) Save(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[c.ID] = *c
	return nil
}

// Get returns a copy of the customer with the given id.
func (r *CustomerRepository) Get(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.store[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}
