// Package file provides an order repository persisted as a single JSON
// document on disk: an object keyed by order id. Every write rewrites the
// whole document through a temp file and an atomic rename, so a crash
// mid-write never leaves a torn store behind.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"

	"github.com/xenking/hexshop/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on a JSON file.
type OrderRepository struct {
	path string
	mu   sync.Mutex
}

// NewOrderRepository opens (or creates) the store at path.
func NewOrderRepository(path string) (*OrderRepository, error) {
	r := &OrderRepository{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.writeAll(map[uuid.UUID]order.Snapshot{}); err != nil {
			return nil, errors.Wrap(err, "init store")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "stat store")
	}
	return r, nil
}

// Save upserts the order by id, overwriting any previous state.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.readAll()
	if err != nil {
		return err
	}
	all[o.ID()] = o.Snapshot()
	return r.writeAll(all)
}

// Get reconstructs the order with the given id.
func (r *OrderRepository) Get(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	all, err := r.readAll()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s, ok := all[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return order.FromSnapshot(s)
}

// ByCustomer reconstructs every order owned by customerID.
func (r *OrderRepository) ByCustomer(_ context.Context, customerID uuid.UUID) ([]*order.Order, error) {
	r.mu.Lock()
	all, err := r.readAll()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []*order.Order
	for _, s := range all {
		if s.CustomerID != customerID {
			continue
		}
		o, err := order.FromSnapshot(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepository) readAll() (map[uuid.UUID]order.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, errors.Wrap(err, "read store")
	}

	all := make(map[uuid.UUID]order.Snapshot)
	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		id, err := uuid.Parse(key)
		if err != nil {
			return errors.Wrapf(err, "store key %q", key)
		}
		s, err := DecodeSnapshot(d)
		if err != nil {
			return err
		}
		all[id] = s
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "decode store %s", r.path)
	}
	return all, nil
}

func (r *OrderRepository) writeAll(all map[uuid.UUID]order.Snapshot) error {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		for id, s := range all {
			e.Field(id.String(), func(e *jx.Encoder) {
				EncodeSnapshot(e, s)
			})
		}
	})

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, e.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write temp store")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "replace store")
	}
	return nil
}

// Path returns the location of the backing file.
func (r *OrderRepository) Path() string {
	return filepath.Clean(r.path)
}
