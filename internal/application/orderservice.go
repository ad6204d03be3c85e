package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/soapmock/internal/domain/model"
	"github.com/ericfisherdev/soapmock/internal/domain/port/driven"
)

// EmptyOrderListing is what ListOrders returns when no orders exist.
const EmptyOrderListing = "No orders registered."

// OrderService exposes the order operations offered over SOAP. Lookups of
// unknown ids surface as driven.ErrOrderNotFound; cancelling an unknown id
// reports false instead.
type OrderService struct {
	store  driven.OrderStore
	logger *slog.Logger
}

// NewOrderService creates a new OrderService with the required dependencies.
func NewOrderService(store driven.OrderStore, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:  store,
		logger: logger,
	}
}

// CreateOrder registers a new order in the Processing state.
func (s *OrderService) CreateOrder(ctx context.Context, description string) (model.Order, error) {
	o, err := s.store.Create(ctx, description)
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}
	s.logger.Info("order created", "id", o.ID, "description", o.Description)
	return o, nil
}

// QueryStatus returns the current status of the order.
func (s *OrderService) QueryStatus(ctx context.Context, id int64) (model.OrderStatus, error) {
	o, err := s.QueryOrder(ctx, id)
	if err != nil {
		return "", err
	}
	return o.Status, nil
}

// QueryOrder returns the full order record.
func (s *OrderService) QueryOrder(ctx context.Context, id int64) (model.Order, error) {
	o, err := s.store.Get(ctx, id)
	if errors.Is(err, driven.ErrOrderNotFound) {
		s.logger.Info("order lookup missed", "id", id)
		return model.Order{}, fmt.Errorf("order %d: %w", id, err)
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("query order %d: %w", id, err)
	}
	s.logger.Info("order queried", "id", id, "status", o.Status)
	return o, nil
}

// CancelOrder marks the order as cancelled and reports whether it existed.
func (s *OrderService) CancelOrder(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.Cancel(ctx, id)
	if err != nil {
		return false, fmt.Errorf("cancel order %d: %w", id, err)
	}
	if !ok {
		s.logger.Warn("cancel requested for unknown order", "id", id)
		return false, nil
	}
	s.logger.Info("order cancelled", "id", id)
	return true, nil
}

// ListOrders returns one "ID=<id>, Description=<description>" line per order,
// oldest first, or EmptyOrderListing when there are none.
func (s *OrderService) ListOrders(ctx context.Context) (string, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list orders: %w", err)
	}
	s.logger.Info("orders listed", "count", len(orders))
	return FormatOrderListing(orders), nil
}

// FormatOrderListing renders orders the way ListOrders does.
func FormatOrderListing(orders []model.Order) string {
	if len(orders) == 0 {
		return EmptyOrderListing
	}

	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, fmt.Sprintf("ID=%d, Description=%s", o.ID, o.Description))
	}
	return strings.Join(lines, "\n")
}
