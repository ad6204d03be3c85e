package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ericfisherdev/soapmock/internal/application"
	"github.com/ericfisherdev/soapmock/internal/domain/port/driven"
	"github.com/ericfisherdev/soapmock/internal/soap"
)

// Operation names exposed by the service.
const (
	OpCreateOrder = "createOrder"
	OpQueryStatus = "queryStatus"
	OpCancelOrder = "cancelOrder"
	OpListOrders  = "listOrders"
)

// QueryMode selects the response shape of queryStatus.
type QueryMode string

const (
	// QueryModeStatus answers queryStatus with the order status string.
	QueryModeStatus QueryMode = "status"
	// QueryModeDetail answers queryStatus with the order id and description.
	QueryModeDetail QueryMode = "detail"
)

type handlerFunc func(ctx context.Context, call *soap.Call) ([]soap.Value, error)

// operation pairs an operation schema with the function serving it.
type operation struct {
	schema soap.Operation
	handle handlerFunc
}

// Dispatcher maps decoded SOAP calls onto the OrderService and turns results
// and errors into response values or faults.
type Dispatcher struct {
	orders *application.OrderService
	mode   QueryMode
	logger *slog.Logger
	ops    map[string]operation
	order  []string
}

// NewDispatcher builds the operation table for the given queryStatus mode.
func NewDispatcher(orders *application.OrderService, mode QueryMode, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		orders: orders,
		mode:   mode,
		logger: logger,
		ops:    make(map[string]operation, 4),
	}

	queryReturns := []soap.Field{{Name: "status", Type: soap.TypeString}}
	if mode == QueryModeDetail {
		queryReturns = []soap.Field{
			{Name: "orderId", Type: soap.TypeInt},
			{Name: "description", Type: soap.TypeString},
		}
	}

	d.register(soap.Operation{
		Name:    OpCreateOrder,
		Doc:     "Creates a new order in the Processing state and returns its id.",
		Args:    []soap.Field{{Name: "description", Type: soap.TypeString}},
		Returns: []soap.Field{{Name: "orderId", Type: soap.TypeInt}, {Name: "description", Type: soap.TypeString}},
	}, d.createOrder)
	d.register(soap.Operation{
		Name:    OpQueryStatus,
		Doc:     "Returns the order status. Unknown ids produce a Client fault.",
		Args:    []soap.Field{{Name: "orderId", Type: soap.TypeInt}},
		Returns: queryReturns,
	}, d.queryStatus)
	d.register(soap.Operation{
		Name:    OpCancelOrder,
		Doc:     "Cancels an order. Returns false when the order does not exist.",
		Args:    []soap.Field{{Name: "orderId", Type: soap.TypeInt}},
		Returns: []soap.Field{{Name: "success", Type: soap.TypeBoolean}},
	}, d.cancelOrder)
	d.register(soap.Operation{
		Name:    OpListOrders,
		Doc:     "Lists every order as one \"ID=..., Description=...\" line.",
		Returns: []soap.Field{{Name: "orders", Type: soap.TypeString}},
	}, d.listOrders)

	return d
}

func (d *Dispatcher) register(schema soap.Operation, fn handlerFunc) {
	d.ops[schema.Name] = operation{schema: schema, handle: fn}
	d.order = append(d.order, schema.Name)
}

// Operations returns the operation schemas in registration order.
func (d *Dispatcher) Operations() []soap.Operation {
	out := make([]soap.Operation, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.ops[name].schema)
	}
	return out
}

// Dispatch runs call and returns either the response values or a fault.
func (d *Dispatcher) Dispatch(ctx context.Context, call *soap.Call) ([]soap.Value, *soap.Fault) {
	op, ok := d.ops[call.Name]
	if !ok {
		d.logger.Warn("unknown soap operation", "operation", call.Name)
		return nil, soap.ClientFault("unknown operation %q", call.Name)
	}

	values, err := op.handle(ctx, call)
	if err == nil {
		return values, nil
	}

	var fault *soap.Fault
	switch {
	case errors.As(err, &fault):
		d.logger.Warn("soap operation rejected", "operation", call.Name, "fault", fault.String)
		return nil, fault
	default:
		d.logger.Error("soap operation failed", "operation", call.Name, "error", err)
		return nil, soap.ServerFault("internal error")
	}
}

func (d *Dispatcher) createOrder(ctx context.Context, call *soap.Call) ([]soap.Value, error) {
	description, err := stringArg(call, "description", 0)
	if err != nil {
		return nil, err
	}

	o, err := d.orders.CreateOrder(ctx, description)
	if err != nil {
		return nil, err
	}
	return []soap.Value{
		{Name: "orderId", Data: strconv.FormatInt(o.ID, 10)},
		{Name: "description", Data: o.Description},
	}, nil
}

func (d *Dispatcher) queryStatus(ctx context.Context, call *soap.Call) ([]soap.Value, error) {
	id, err := intArg(call, "orderId", 0)
	if err != nil {
		return nil, err
	}

	o, err := d.orders.QueryOrder(ctx, id)
	if errors.Is(err, driven.ErrOrderNotFound) {
		return nil, soap.ClientFault("order %d not found", id)
	}
	if err != nil {
		return nil, err
	}

	if d.mode == QueryModeDetail {
		return []soap.Value{
			{Name: "orderId", Data: strconv.FormatInt(o.ID, 10)},
			{Name: "description", Data: o.Description},
		}, nil
	}
	return []soap.Value{{Name: "status", Data: string(o.Status)}}, nil
}

func (d *Dispatcher) cancelOrder(ctx context.Context, call *soap.Call) ([]soap.Value, error) {
	id, err := intArg(call, "orderId", 0)
	if err != nil {
		return nil, err
	}

	ok, err := d.orders.CancelOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return []soap.Value{{Name: "success", Data: strconv.FormatBool(ok)}}, nil
}

func (d *Dispatcher) listOrders(ctx context.Context, _ *soap.Call) ([]soap.Value, error) {
	listing, err := d.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return []soap.Value{{Name: "orders", Data: listing}}, nil
}

func stringArg(call *soap.Call, name string, pos int) (string, error) {
	v, ok := call.Param(name, pos)
	if !ok {
		return "", soap.ClientFault("missing argument %q", name)
	}
	return v, nil
}

func intArg(call *soap.Call, name string, pos int) (int64, error) {
	raw, err := stringArg(call, name, pos)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, soap.ClientFault("invalid argument %q: %q is not an integer", name, raw)
	}
	return n, nil
}
