package order

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/hexshop/internal/domain/money"
)

// Snapshot is the adapter-facing representation of an order, used by
// storage backends to persist and reconstruct aggregates.
type Snapshot struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Submitted  bool
	Items      []ItemSnapshot
}

// ItemSnapshot is the flattened form of a line item.
type ItemSnapshot struct {
	ProductID      string `json:"product_id"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	Currency       string `json:"currency"`
	Quantity       int64  `json:"quantity"`
}

// Snapshot captures the current aggregate state.
func (o *Order) Snapshot() Snapshot {
	items := make([]ItemSnapshot, len(o.items))
	for i, item := range o.items {
		items[i] = ItemSnapshot{
			ProductID:      item.productID.value,
			UnitPriceMinor: item.unitPrice.Amount(),
			Currency:       item.unitPrice.Currency(),
			Quantity:       item.quantity,
		}
	}
	return Snapshot{
		ID:         o.id,
		CustomerID: o.customerID,
		Submitted:  o.status == StatusSubmitted,
		Items:      items,
	}
}

// FromSnapshot reconstructs an aggregate from persisted state. Items are
// validated as on construction, but a submitted order is restored directly
// into the submitted state without re-deriving Submit preconditions, so a
// stored submitted order always loads.
func FromSnapshot(s Snapshot) (*Order, error) {
	o := &Order{
		id:         s.ID,
		customerID: s.CustomerID,
		status:     StatusOpen,
	}
	for _, is := range s.Items {
		if err := restoreItem(o, is); err != nil {
			return nil, errors.Wrapf(err, "order %s", s.ID)
		}
	}
	if s.Submitted {
		o.status = StatusSubmitted
	}
	return o, nil
}

func restoreItem(o *Order, is ItemSnapshot) error {
	productID, err := NewProductID(is.ProductID)
	if err != nil {
		return err
	}
	price, err := money.New(is.UnitPriceMinor, is.Currency)
	if err != nil {
		return err
	}
	return o.AddItem(productID, price, is.Quantity)
}
