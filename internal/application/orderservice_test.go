package application_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/soapmock/internal/adapter/driven/memory"
	"github.com/ericfisherdev/soapmock/internal/application"
	"github.com/ericfisherdev/soapmock/internal/domain/model"
	"github.com/ericfisherdev/soapmock/internal/domain/port/driven"
)

// failingOrderStore returns err from every operation.
type failingOrderStore struct{ err error }

func (f failingOrderStore) Create(context.Context, string) (model.Order, error) {
	return model.Order{}, f.err
}
func (f failingOrderStore) Get(context.Context, int64) (model.Order, error) {
	return model.Order{}, f.err
}
func (f failingOrderStore) Cancel(context.Context, int64) (bool, error) { return false, f.err }
func (f failingOrderStore) List(context.Context) ([]model.Order, error) { return nil, f.err }

func newOrderService() *application.OrderService {
	return application.NewOrderService(memory.NewOrderRegistry(), slog.Default())
}

func TestOrderService_CreateAndQuery(t *testing.T) {
	svc := newOrderService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.ID)

	status, err := svc.QueryStatus(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, status)

	got, err := svc.QueryOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Description)
}

func TestOrderService_QueryUnknownIsNotFound(t *testing.T) {
	svc := newOrderService()
	ctx := context.Background()

	_, err := svc.QueryStatus(ctx, 7)
	assert.ErrorIs(t, err, driven.ErrOrderNotFound)

	_, err = svc.QueryOrder(ctx, 7)
	assert.ErrorIs(t, err, driven.ErrOrderNotFound)
}

func TestOrderService_Cancel(t *testing.T) {
	svc := newOrderService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "X")
	require.NoError(t, err)

	ok, err := svc.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, ok, "cancel must be idempotent")

	status, err := svc.QueryStatus(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, status)

	ok, err = svc.CancelOrder(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderService_ListOrders(t *testing.T) {
	svc := newOrderService()
	ctx := context.Background()

	listing, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, application.EmptyOrderListing, listing)

	_, err = svc.CreateOrder(ctx, "A")
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, "B")
	require.NoError(t, err)

	listing, err = svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ID=1, Description=A\nID=2, Description=B", listing)
}

func TestOrderService_StoreErrorsAreWrapped(t *testing.T) {
	storeErr := errors.New("boom")
	svc := application.NewOrderService(failingOrderStore{err: storeErr}, slog.Default())
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "X")
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.QueryOrder(ctx, 1)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, driven.ErrOrderNotFound)

	_, err = svc.CancelOrder(ctx, 1)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.ListOrders(ctx)
	assert.ErrorIs(t, err, storeErr)
}
