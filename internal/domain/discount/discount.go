// Package discount implements the loyalty and discount policies. The
// service carries no state of its own; every decision is a pure function
// of the order snapshots it is given.
package discount

import (
	"github.com/go-faster/errors"

	"github.com/xenking/hexshop/internal/domain/money"
	"github.com/xenking/hexshop/internal/domain/order"
)

// BonusProductID is the zero-priced line item granted by the bulk bonus.
const BonusProductID = "BONUS-STICKER"

// bulkBonusMinOpen is the number of open orders (excluding the one being
// built) a customer needs before the bonus applies.
const bulkBonusMinOpen = 3

// Service computes bonus-item eligibility and discounted totals.
type Service struct{}

// NewService returns the stateless discount policy.
func NewService() *Service {
	return &Service{}
}

// MaybeApplyBulkBonus appends a zero-priced bonus item to o when the
// customer has bulkBonusMinOpen or more other open orders. It mutates the
// order in place, so it must run before the order is persisted or
// submitted. The check is idempotent: an order already carrying the bonus
// line is left unchanged.
func (s *Service) MaybeApplyBulkBonus(o *order.Order, others []*order.Order) error {
	openCount := 0
	for _, other := range others {
		if !other.Submitted() {
			openCount++
		}
	}
	if openCount < bulkBonusMinOpen {
		return nil
	}

	bonusID, err := order.NewProductID(BonusProductID)
	if err != nil {
		return err
	}
	if o.Contains(bonusID) {
		return nil
	}

	// Price the bonus in the order's reference currency so the policy can
	// never make Total fail with a currency mismatch.
	currency := money.DefaultCurrency
	if items := o.Items(); len(items) > 0 {
		currency = items[0].UnitPrice().Currency()
	}
	return o.AddItem(bonusID, money.Zero(currency), 1)
}

// DiscountedTotal previews the order total with a percentage discount
// applied when the total reaches the threshold (in minor units). The
// discount is floor(total × percent / 100). It never mutates the order and
// nothing is persisted; below the threshold, or for a non-positive
// percentage, the unchanged total is returned.
func (s *Service) DiscountedTotal(o *order.Order, percent, thresholdMinor int64) (money.Money, error) {
	total, err := o.Total()
	if err != nil {
		return money.Money{}, errors.Wrap(err, "total")
	}
	if total.Amount() < thresholdMinor || percent <= 0 {
		return total, nil
	}
	discounted := total.Amount() - total.Amount()*percent/100
	return money.New(discounted, total.Currency())
}
