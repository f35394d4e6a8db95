package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/hexshop/internal/domain/customer"
	"github.com/xenking/hexshop/internal/domain/money"
	"github.com/xenking/hexshop/internal/domain/order"
)

func newOrder(t *testing.T, customerID uuid.UUID) *order.Order {
	t.Helper()
	o := order.New(customerID)
	pid, err := order.NewProductID("SKU-1")
	require.NoError(t, err)
	price, err := money.New(250, "GBP")
	require.NoError(t, err)
	require.NoError(t, o.AddItem(pid, price, 1))
	return o
}

func TestOrderRepository_SaveGet(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	o := newOrder(t, uuid.New())

	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, o.ID(), got.ID())
	assert.Equal(t, o.Items(), got.Items())

	// Mutating the loaded copy does not leak back into the store.
	pid, err := order.NewProductID("SKU-2")
	require.NoError(t, err)
	price, err := money.New(100, "GBP")
	require.NoError(t, err)
	require.NoError(t, got.AddItem(pid, price, 1))

	again, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Len(t, again.Items(), 1)
}

func TestOrderRepository_GetNotFound(t *testing.T) {
	repo := NewOrderRepository()

	_, err := repo.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderRepository_SaveOverwrites(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	o := newOrder(t, uuid.New())
	require.NoError(t, repo.Save(ctx, o))

	require.NoError(t, o.Submit())
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.True(t, got.Submitted())
}

func TestOrderRepository_ByCustomer(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	customerID := uuid.New()

	require.NoError(t, repo.Save(ctx, newOrder(t, customerID)))
	require.NoError(t, repo.Save(ctx, newOrder(t, customerID)))
	require.NoError(t, repo.Save(ctx, newOrder(t, uuid.New())))

	got, err := repo.ByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.ByCustomer(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCustomerRepository(t *testing.T) {
	repo := NewCustomerRepository()
	ctx := context.Background()

	c, err := customer.New("Ada", "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = repo.Get(ctx, uuid.New())
	require.ErrorIs(t, err, customer.ErrNotFound)
}
