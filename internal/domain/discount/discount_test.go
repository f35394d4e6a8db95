package discount

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/hexshop/internal/domain/money"
	"github.com/xenking/hexshop/internal/domain/order"
)

func newOrderWithItem(t *testing.T, amount int64, qty int64) *order.Order {
	t.Helper()
	o := order.New(uuid.New())
	addItem(t, o, "SKU-1", amount, qty)
	return o
}

func addItem(t *testing.T, o *order.Order, sku string, amount, qty int64) {
	t.Helper()
	id, err := order.NewProductID(sku)
	require.NoError(t, err)
	price, err := money.New(amount, "GBP")
	require.NoError(t, err)
	require.NoError(t, o.AddItem(id, price, qty))
}

func openOrders(t *testing.T, n int) []*order.Order {
	t.Helper()
	orders := make([]*order.Order, n)
	for i := range orders {
		orders[i] = newOrderWithItem(t, 100, 1)
	}
	return orders
}

func containsBonus(t *testing.T, o *order.Order) bool {
	t.Helper()
	for _, item := range o.Items() {
		if item.ProductID().String() == BonusProductID {
			return true
		}
	}
	return false
}

func TestBulkBonus_ThreeOpenOrdersTrigger(t *testing.T) {
	svc := NewService()
	o := newOrderWithItem(t, 250, 1)

	require.NoError(t, svc.MaybeApplyBulkBonus(o, openOrders(t, 3)))

	require.True(t, containsBonus(t, o))
	require.Len(t, o.Items(), 2)

	// Bonus line is free: total is unchanged.
	total, err := o.Total()
	require.NoError(t, err)
	assert.Equal(t, int64(250), total.Amount())
}

func TestBulkBonus_TwoOpenOrdersDoNot(t *testing.T) {
	svc := NewService()
	o := newOrderWithItem(t, 250, 1)

	require.NoError(t, svc.MaybeApplyBulkBonus(o, openOrders(t, 2)))
	assert.False(t, containsBonus(t, o))
}

func TestBulkBonus_SubmittedOrdersAreNotOpen(t *testing.T) {
	svc := NewService()
	o := newOrderWithItem(t, 250, 1)

	others := openOrders(t, 4)
	require.NoError(t, others[0].Submit())
	require.NoError(t, others[1].Submit())

	// Only 2 of the 4 remain open.
	require.NoError(t, svc.MaybeApplyBulkBonus(o, others))
	assert.False(t, containsBonus(t, o))
}

func TestBulkBonus_Idempotent(t *testing.T) {
	svc := NewService()
	o := newOrderWithItem(t, 250, 1)
	others := openOrders(t, 3)

	require.NoError(t, svc.MaybeApplyBulkBonus(o, others))
	require.NoError(t, svc.MaybeApplyBulkBonus(o, others))

	bonusLines := 0
	for _, item := range o.Items() {
		if item.ProductID().String() == BonusProductID {
			bonusLines++
		}
	}
	assert.Equal(t, 1, bonusLines)
}

func TestBulkBonus_UsesOrderCurrency(t *testing.T) {
	svc := NewService()
	o := order.New(uuid.New())
	id, err := order.NewProductID("SKU-USD")
	require.NoError(t, err)
	price, err := money.New(500, "USD")
	require.NoError(t, err)
	require.NoError(t, o.AddItem(id, price, 1))

	require.NoError(t, svc.MaybeApplyBulkBonus(o, openOrders(t, 3)))

	// The free line must not break the total with a currency mismatch.
	total, err := o.Total()
	require.NoError(t, err)
	assert.Equal(t, int64(500), total.Amount())
	assert.Equal(t, "USD", total.Currency())
}

func TestDiscountedTotal_AboveThreshold(t *testing.T) {
	svc := NewService()
	o := newOrderWithItem(t, 2500, 1)

	got, err := svc.DiscountedTotal(o, 10, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2250), got.Amount())
}

func TestDiscountedTotal_BelowThreshold(t *testing.T) {
	svc := NewService()
	o := newOrderWithItem(t, 1500, 1)

	got, err := svc.DiscountedTotal(o, 10, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.Amount())
}

func TestDiscountedTotal_ZeroPercent(t *testing.T) {
	svc := NewService()
	o := newOrderWithItem(t, 2500, 1)

	got, err := svc.DiscountedTotal(o, 0, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.Amount())
}

func TestDiscountedTotal_FloorsDiscount(t *testing.T) {
	svc := NewService()
	// 2001 * 3 / 100 = 60.03, floored to 60.
	o := newOrderWithItem(t, 2001, 1)

	got, err := svc.DiscountedTotal(o, 3, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(1941), got.Amount())
}

func TestDiscountedTotal_DoesNotMutate(t *testing.T) {
	svc := NewService()
	o := newOrderWithItem(t, 2500, 1)

	_, err := svc.DiscountedTotal(o, 10, 2000)
	require.NoError(t, err)

	total, err := o.Total()
	require.NoError(t, err)
	assert.Equal(t, int64(2500), total.Amount())
	assert.Len(t, o.Items(), 1)
}
