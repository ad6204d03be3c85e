package httphandler

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
	"github.com/ericfisherdev/soapmock/internal/soap"
)

type brokenOrderStore struct{}

func (brokenOrderStore) Create(context.Context, string) (model.Order, error) {
	return model.Order{}, errors.New("store offline")
}
func (brokenOrderStore) Get(context.Context, int64) (model.Order, error) {
	return model.Order{}, errors.New("store offline")
}
func (brokenOrderStore) Cancel(context.Context, int64) (bool, error) {
	return false, errors.New("store offline")
}
func (brokenOrderStore) List(context.Context) ([]model.Order, error) {
	return nil, errors.New("store offline")
}

func newTestDispatcher(mode QueryMode) *Dispatcher {
	orders := application.NewOrderService(memory.NewOrderRegistry(), slog.Default())
	return NewDispatcher(orders, mode, slog.Default())
}

func TestDispatcher_OperationsTable(t *testing.T) {
	tests := []struct {
		mode        QueryMode
		wantReturns []soap.Field
	}{
		{mode: QueryModeStatus, wantReturns: []soap.Field{{Name: "status", Type: soap.TypeString}}},
		{mode: QueryModeDetail, wantReturns: []soap.Field{
			{Name: "orderId", Type: soap.TypeInt},
			{Name: "description", Type: soap.TypeString},
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			ops := newTestDispatcher(tt.mode).Operations()
			require.Len(t, ops, 4)

			names := []string{ops[0].Name, ops[1].Name, ops[2].Name, ops[3].Name}
			assert.Equal(t, []string{OpCreateOrder, OpQueryStatus, OpCancelOrder, OpListOrders}, names)
			assert.Equal(t, tt.wantReturns, ops[1].Returns)
			assert.Empty(t, ops[3].Args)
		})
	}
}

func TestDispatcher_IntArgTolerantOfWhitespace(t *testing.T) {
	d := newTestDispatcher(QueryModeStatus)
	ctx := context.Background()

	_, fault := d.Dispatch(ctx, &soap.Call{Name: OpCreateOrder, Params: []soap.Value{{Name: "description", Data: "X"}}})
	require.Nil(t, fault)

	values, fault := d.Dispatch(ctx, &soap.Call{Name: OpQueryStatus, Params: []soap.Value{{Name: "orderId", Data: "\n  1 \n"}}})
	require.Nil(t, fault)
	assert.Equal(t, []soap.Value{{Name: "status", Data: "Processing"}}, values)
}

func TestDispatcher_StoreFailureIsServerFault(t *testing.T) {
	orders := application.NewOrderService(brokenOrderStore{}, slog.Default())
	d := NewDispatcher(orders, QueryModeStatus, slog.Default())
	ctx := context.Background()

	calls := []*soap.Call{
		{Name: OpCreateOrder, Params: []soap.Value{{Name: "description", Data: "X"}}},
		{Name: OpQueryStatus, Params: []soap.Value{{Name: "orderId", Data: "1"}}},
		{Name: OpCancelOrder, Params: []soap.Value{{Name: "orderId", Data: "1"}}},
		{Name: OpListOrders},
	}
	for _, call := range calls {
		t.Run(call.Name, func(t *testing.T) {
			_, fault := d.Dispatch(ctx, call)
			require.NotNil(t, fault)
			assert.Equal(t, soap.FaultServer, fault.Code)
			assert.Equal(t, "internal error", fault.String, "internal details must not leak")
		})
	}
}
