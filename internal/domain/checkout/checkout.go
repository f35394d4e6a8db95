// Package checkout orchestrates the order use cases: it sequences
// aggregate creation and mutation, discount policy application, and
// persistence through the order repository port. Side effects are confined
// to repository writes; every validation failure aborts the use case
// before anything is saved.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/hexshop/internal/domain/customer"
	"github.com/xenking/hexshop/internal/domain/discount"
	"github.com/xenking/hexshop/internal/domain/money"
	"github.com/xenking/hexshop/internal/domain/order"
)

// Service coordinates the checkout use cases.
type Service struct {
	orders    order.Repository
	discounts *discount.Service
}

// NewService creates a checkout Service with the required dependencies.
func NewService(orders order.Repository, discounts *discount.Service) *Service {
	return &Service{
		orders:    orders,
		discounts: discounts,
	}
}

// StartOrderWithItem creates a new order for the customer with its first
// item, applies the bulk-bonus rule against the customer's existing orders,
// persists the order, and returns its id.
func (s *Service) StartOrderWithItem(
	ctx context.Context,
	cust *customer.Customer,
	productID string,
	unitPrice money.Money,
	quantity int64,
) (uuid.UUID, error) {
	pid, err := order.NewProductID(productID)
	if err != nil {
		return uuid.Nil, err
	}

	o := order.New(cust.ID)
	if err := o.AddItem(pid, unitPrice, quantity); err != nil {
		return uuid.Nil, err
	}

	// Bonus eligibility is judged on the customer's other orders, before
	// the new one is persisted.
	others, err := s.orders.ByCustomer(ctx, cust.ID)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "load customer orders")
	}
	if err := s.discounts.MaybeApplyBulkBonus(o, others); err != nil {
		return uuid.Nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return uuid.Nil, errors.Wrap(err, "save order")
	}
	return o.ID(), nil
}

// AddItem appends a line item to an existing order and persists it.
func (s *Service) AddItem(
	ctx context.Context,
	orderID uuid.UUID,
	productID string,
	unitPrice money.Money,
	quantity int64,
) error {
	pid, err := order.NewProductID(productID)
	if err != nil {
		return err
	}

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if err := o.AddItem(pid, unitPrice, quantity); err != nil {
		return err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return errors.Wrap(err, "save order")
	}
	return nil
}

// PreviewTotalWithDiscount returns the order total with the threshold
// discount applied. Nothing is persisted; the preview never binds the
// order to the discounted amount.
func (s *Service) PreviewTotalWithDiscount(
	ctx context.Context,
	orderID uuid.UUID,
	percent, thresholdMinor int64,
) (money.Money, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return money.Money{}, err
	}
	return s.discounts.DiscountedTotal(o, percent, thresholdMinor)
}

// Submit transitions the order to its terminal state, persists it, and
// returns the final total. The total is the undiscounted sum: any
// previously previewed discount is not applied at submission.
func (s *Service) Submit(ctx context.Context, orderID uuid.UUID) (money.Money, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return money.Money{}, err
	}
	if err := o.Submit(); err != nil {
		return money.Money{}, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return money.Money{}, errors.Wrap(err, "save order")
	}
	return o.Total()
}
