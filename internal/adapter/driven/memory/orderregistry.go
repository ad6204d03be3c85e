// Package memory holds process-local implementations of driven ports.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ericfisherdev/soapmock/internal/domain/model"
	"github.com/ericfisherdev/soapmock/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OrderStore = (*OrderRegistry)(nil)

// OrderRegistry keeps orders in memory for the lifetime of the process.
// A single mutex serializes every read and mutation, which also makes id
// allocation safe under concurrent creates.
type OrderRegistry struct {
	mu     sync.Mutex
	orders map[int64]*model.Order
}

// NewOrderRegistry returns a registry pre-populated with seed. Seed orders
// keep their ids; later creates continue after the highest one.
func NewOrderRegistry(seed ...model.Order) *OrderRegistry {
	r := &OrderRegistry{orders: make(map[int64]*model.Order, len(seed))}
	for _, o := range seed {
		r.orders[o.ID] = &o
	}
	return r
}

// DemoOrders returns the two orders the service starts with when seeding is enabled.
func DemoOrders() []model.Order {
	return []model.Order{
		{ID: 1, Status: model.OrderStatusProcessing, Description: "Initial order"},
		{ID: 2, Status: model.OrderStatusShipped, Description: "Shipped order"},
	}
}

// Create stores a new Processing order under max(existing ids)+1.
func (r *OrderRegistry) Create(_ context.Context, description string) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var maxID int64
	for id := range r.orders {
		if id > maxID {
			maxID = id
		}
	}

	o := &model.Order{
		ID:          maxID + 1,
		Status:      model.OrderStatusProcessing,
		Description: description,
	}
	r.orders[o.ID] = o
	return *o, nil
}

// Get returns a copy of the order with the given id.
func (r *OrderRegistry) Get(_ context.Context, id int64) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return model.Order{}, driven.ErrOrderNotFound
	}
	return *o, nil
}

// Cancel sets the order status to Cancelled.
func (r *OrderRegistry) Cancel(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	o.Status = model.OrderStatusCancelled
	return true, nil
}

// List returns copies of all orders sorted by id. Since ids are allocated in
// increasing order this is also creation order.
func (r *OrderRegistry) List(_ context.Context) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
