package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/hexshop/internal/domain/customer"
	"github.com/xenking/hexshop/internal/domain/discount"
	"github.com/xenking/hexshop/internal/domain/money"
	"github.com/xenking/hexshop/internal/domain/order"
)

// --- Mock repository ---

type mockOrderRepo struct {
	byID    map[uuid.UUID]order.Snapshot
	saveErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{byID: make(map[uuid.UUID]order.Snapshot)}
}

func (m *mockOrderRepo) Save(_ context.Context, o *order.Order) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.byID[o.ID()] = o.Snapshot()
	return nil
}

func (m *mockOrderRepo) Get(_ context.Context, id uuid.UUID) (*order.Order, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return order.FromSnapshot(s)
}

func (m *mockOrderRepo) ByCustomer(_ context.Context, customerID uuid.UUID) ([]*order.Order, error) {
	var out []*order.Order
	for _, s := range m.byID {
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

// --- Helpers ---

func newTestService() (*Service, *mockOrderRepo) {
	repo := newMockOrderRepo()
	return NewService(repo, discount.NewService()), repo
}

func newTestCustomer(t *testing.T) *customer.Customer {
	t.Helper()
	c, err := customer.New("Ada", "ada@example.com")
	require.NoError(t, err)
	return c
}

func gbp(t *testing.T, amount int64) money.Money {
	t.Helper()
	m, err := money.New(amount, "GBP")
	require.NoError(t, err)
	return m
}

func hasBonusLine(o *order.Order) bool {
	for _, item := range o.Items() {
		if item.ProductID().String() == discount.BonusProductID {
			return true
		}
	}
	return false
}

// --- Tests ---

func TestStartOrderWithItem(t *testing.T) {
	svc, repo := newTestService()
	cust := newTestCustomer(t)

	id, err := svc.StartOrderWithItem(context.Background(), cust, "SKU-1", gbp(t, 250), 2)
	require.NoError(t, err)

	saved, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, cust.ID, saved.CustomerID())
	assert.False(t, saved.Submitted())
	require.Len(t, saved.Items(), 1)

	total, err := saved.Total()
	require.NoError(t, err)
	assert.Equal(t, int64(500), total.Amount())
}

func TestStartOrderWithItem_InvalidQuantity(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.StartOrderWithItem(context.Background(), newTestCustomer(t), "SKU-1", gbp(t, 250), 0)
	require.ErrorIs(t, err, money.ErrInvalidQuantity)
	assert.Empty(t, repo.byID, "nothing may be persisted on a failed use case")
}

func TestStartOrderWithItem_EmptyProductID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.StartOrderWithItem(context.Background(), newTestCustomer(t), "", gbp(t, 250), 1)
	require.ErrorIs(t, err, order.ErrEmptyProductID)
}

func TestStartOrderWithItem_SaveError(t *testing.T) {
	svc, repo := newTestService()
	repo.saveErr = errors.New("db write failed")

	_, err := svc.StartOrderWithItem(context.Background(), newTestCustomer(t), "SKU-1", gbp(t, 250), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save order")
}

func TestAddItem(t *testing.T) {
	svc, repo := newTestService()
	cust := newTestCustomer(t)

	id, err := svc.StartOrderWithItem(context.Background(), cust, "SKU-1", gbp(t, 250), 1)
	require.NoError(t, err)

	require.NoError(t, svc.AddItem(context.Background(), id, "SKU-2", gbp(t, 800), 1))

	saved, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	total, err := saved.Total()
	require.NoError(t, err)
	assert.Equal(t, int64(1050), total.Amount())
}

func TestAddItem_OrderNotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.AddItem(context.Background(), uuid.New(), "SKU-1", gbp(t, 250), 1)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestPreviewTotalWithDiscount_OrderNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.PreviewTotalWithDiscount(context.Background(), uuid.New(), 10, 2000)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestSubmit_OrderNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Submit(context.Background(), uuid.New())
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestSubmit_Twice(t *testing.T) {
	svc, _ := newTestService()
	cust := newTestCustomer(t)

	id, err := svc.StartOrderWithItem(context.Background(), cust, "SKU-1", gbp(t, 250), 1)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), id)
	require.ErrorIs(t, err, order.ErrAlreadySubmitted)
}

func TestBulkBonus_CountsOtherOpenOrdersOnly(t *testing.T) {
	svc, repo := newTestService()
	cust := newTestCustomer(t)
	ctx := context.Background()

	// Two existing open orders: the third order gets no bonus.
	_, err := svc.StartOrderWithItem(ctx, cust, "SKU-A", gbp(t, 250), 2)
	require.NoError(t, err)
	_, err = svc.StartOrderWithItem(ctx, cust, "SKU-B", gbp(t, 800), 1)
	require.NoError(t, err)

	thirdID, err := svc.StartOrderWithItem(ctx, cust, "SKU-C", gbp(t, 2400), 1)
	require.NoError(t, err)
	third, err := repo.Get(ctx, thirdID)
	require.NoError(t, err)
	assert.False(t, hasBonusLine(third))

	// With three open orders behind them, the fourth does.
	fourthID, err := svc.StartOrderWithItem(ctx, cust, "SKU-D", gbp(t, 100), 1)
	require.NoError(t, err)
	fourth, err := repo.Get(ctx, fourthID)
	require.NoError(t, err)
	assert.True(t, hasBonusLine(fourth))
}

func TestCheckout_EndToEnd(t *testing.T) {
	svc, repo := newTestService()
	cust := newTestCustomer(t)
	ctx := context.Background()

	_, err := svc.StartOrderWithItem(ctx, cust, "SKU-A", gbp(t, 250), 2) // 500
	require.NoError(t, err)
	_, err = svc.StartOrderWithItem(ctx, cust, "SKU-B", gbp(t, 800), 1) // 800
	require.NoError(t, err)

	orderC, err := svc.StartOrderWithItem(ctx, cust, "SKU-C", gbp(t, 2400), 1)
	require.NoError(t, err)

	// Only two other orders were open, so C carries no bonus line.
	c, err := repo.Get(ctx, orderC)
	require.NoError(t, err)
	assert.False(t, hasBonusLine(c))

	require.NoError(t, svc.AddItem(ctx, orderC, "SKU-D", gbp(t, 250), 1))

	preview, err := svc.PreviewTotalWithDiscount(ctx, orderC, 10, 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2385), preview.Amount())

	// Submission returns the undiscounted total: the preview never binds.
	total, err := svc.Submit(ctx, orderC)
	require.NoError(t, err)
	assert.Equal(t, int64(2650), total.Amount())

	err = svc.AddItem(ctx, orderC, "SKU-E", gbp(t, 100), 1)
	require.ErrorIs(t, err, order.ErrAlreadySubmitted)
}
