package model

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Order is a single order held by the order registry. Orders are never
// deleted; cancelling only changes Status.
type Order struct {
	ID          int64
	Status      OrderStatus
	Description string
}
