package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/soapmock/internal/domain/model"
)

// ErrOrderNotFound is returned by OrderStore lookups when no order has the
// requested id.
var ErrOrderNotFound = errors.New("order not found")

// OrderStore defines the driven port for order bookkeeping.
type OrderStore interface {
	// Create stores a new order in the Processing state and returns it with
	// its assigned id. Ids are strictly increasing.
	Create(ctx context.Context, description string) (model.Order, error)

	// Get returns the order with the given id, or ErrOrderNotFound.
	Get(ctx context.Context, id int64) (model.Order, error)

	// Cancel marks the order as Cancelled. It reports false when the order
	// does not exist. Cancelling twice is not an error.
	Cancel(ctx context.Context, id int64) (bool, error)

	// List returns all orders in creation order.
	List(ctx context.Context) ([]model.Order, error)
}
