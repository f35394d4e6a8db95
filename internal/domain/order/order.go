// Package order contains the Order aggregate and its persistence port.
//
// The aggregate is the only mutation entry point for its line items: items
// are appended and removed through Order methods, never spliced directly,
// and the Items accessor returns a copy. Once submitted an order is frozen
// forever.
package order

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/hexshop/internal/domain/money"
)

// Sentinel errors for order validation.
var (
	ErrEmptyProductID   = errors.New("product id cannot be empty")
	ErrAlreadySubmitted = errors.New("order is already submitted and cannot be modified")
	ErrEmptyOrder       = errors.New("cannot submit an empty order")
)

// ProductID identifies a product. Equality is by value.
type ProductID struct {
	value string
}

// NewProductID validates and wraps a raw product identifier.
func NewProductID(value string) (ProductID, error) {
	if value == "" {
		return ProductID{}, ErrEmptyProductID
	}
	return ProductID{value: value}, nil
}

func (p ProductID) String() string { return p.value }

// Item is an immutable order line: a product at a unit price, quantity times.
type Item struct {
	productID ProductID
	unitPrice money.Money
	quantity  int64
}

// NewItem constructs a line item. Quantity must be positive.
func NewItem(productID ProductID, unitPrice money.Money, quantity int64) (Item, error) {
	if quantity <= 0 {
		return Item{}, money.ErrInvalidQuantity
	}
	return Item{productID: productID, unitPrice: unitPrice, quantity: quantity}, nil
}

// ProductID returns the product the line refers to.
func (i Item) ProductID() ProductID { return i.productID }

// UnitPrice returns the per-unit price of the line.
func (i Item) UnitPrice() money.Money { return i.unitPrice }

// Quantity returns the number of units.
func (i Item) Quantity() int64 { return i.quantity }

// Status is the order lifecycle state. There are exactly two states and a
// single one-way transition between them.
type Status uint8

const (
	// StatusOpen is the initial state; items may be added and removed.
	StatusOpen Status = iota
	// StatusSubmitted is terminal; the item list is frozen.
	StatusSubmitted
)

func (s Status) String() string {
	if s == StatusSubmitted {
		return "submitted"
	}
	return "open"
}

// Order is the aggregate root owning its item list and submission state.
type Order struct {
	id         uuid.UUID
	customerID uuid.UUID
	items      []Item
	status     Status
}

// New creates an open order with no items for the given customer.
func New(customerID uuid.UUID) *Order {
	return &Order{
		id:         uuid.New(),
		customerID: customerID,
		status:     StatusOpen,
	}
}

// ID returns the order identifier.
func (o *Order) ID() uuid.UUID { return o.id }

// CustomerID returns the owning customer's identifier.
func (o *Order) CustomerID() uuid.UUID { return o.customerID }

// Submitted reports whether the order has been submitted.
func (o *Order) Submitted() bool { return o.status == StatusSubmitted }

// Items returns a snapshot copy of the item list. Mutating the returned
// slice does not affect the order.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// AddItem appends a line item. The order must still be open.
func (o *Order) AddItem(productID ProductID, unitPrice money.Money, quantity int64) error {
	if err := o.assertOpen(); err != nil {
		return err
	}
	item, err := NewItem(productID, unitPrice, quantity)
	if err != nil {
		return err
	}
	o.items = append(o.items, item)
	return nil
}

// RemoveItem removes every line matching productID. Removing a product that
// is not present is a no-op. The order must still be open.
func (o *Order) RemoveItem(productID ProductID) error {
	if err := o.assertOpen(); err != nil {
		return err
	}
	kept := o.items[:0]
	for _, item := range o.items {
		if item.productID != productID {
			kept = append(kept, item)
		}
	}
	o.items = kept
	return nil
}

// Contains reports whether any line refers to productID.
func (o *Order) Contains(productID ProductID) bool {
	for _, item := range o.items {
		if item.productID == productID {
			return true
		}
	}
	return false
}

// Total folds unitPrice × quantity over all items. The reference currency is
// the first item's currency, or the default currency for an empty order.
// Items in a different currency make the sum fail rather than coerce.
func (o *Order) Total() (money.Money, error) {
	currency := money.DefaultCurrency
	if len(o.items) > 0 {
		currency = o.items[0].unitPrice.Currency()
	}

	total := money.Zero(currency)
	for _, item := range o.items {
		line, err := item.unitPrice.Multiply(item.quantity)
		if err != nil {
			return money.Money{}, errors.Wrapf(err, "line %s", item.productID)
		}
		total, err = total.Add(line)
		if err != nil {
			return money.Money{}, errors.Wrapf(err, "line %s", item.productID)
		}
	}
	return total, nil
}

// Submit transitions the order to its terminal submitted state. An empty
// order cannot be submitted, and submission is not repeatable.
func (o *Order) Submit() error {
	if err := o.assertOpen(); err != nil {
		return err
	}
	if len(o.items) == 0 {
		return ErrEmptyOrder
	}
	o.status = StatusSubmitted
	return nil
}

func (o *Order) assertOpen() error {
	if o.status == StatusSubmitted {
		return ErrAlreadySubmitted
	}
	return nil
}
