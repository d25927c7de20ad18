package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderNew            OrderStatus = "new"
	OrderInProgress     OrderStatus = "in_progress"
	OrderReadyForPickup OrderStatus = "ready_for_pickup"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	OrderNew:            true,
	OrderInProgress:     true,
	OrderReadyForPickup: true,
	OrderCompleted:      true,
	OrderCancelled:      true,
}

// Completed and cancelled orders accept no further status updates.
var orderTerminal = map[OrderStatus]bool{
	OrderCompleted: true,
	OrderCancelled: true,
}

// CanTransitionTo reports whether a status update from s to the given
// status is allowed. Orders move freely between non-terminal states, so
// intermediate steps may be skipped; only repeating the current status or
// leaving a terminal state is rejected.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	return !orderTerminal[s] && to != s
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	return orderStatuses[s]
}

// Order represents a product order. Contact fields are snapshotted at
// order time and do not follow later profile edits.
type Order struct {
	ID            int64       `json:"id" db:"id"`
	UserID        int64       `json:"userId" db:"user_id"`
	OrderNumber   string      `json:"orderNumber" db:"order_number"`
	TotalAmount   float64     `json:"totalAmount" db:"total_amount"`
	Status        OrderStatus `json:"status" db:"status"`
	Phone         string      `json:"phone" db:"phone"`
	Email         string      `json:"email" db:"email"`
	FirstName     string      `json:"firstName" db:"first_name"`
	LastName      string      `json:"lastName" db:"last_name"`
	PaymentMethod string      `json:"paymentMethod" db:"payment_method"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
}

// OrderItem is a line item. UnitPrice is the product price at order time
// and TotalAmount is quantity times that price, computed once and stored.
type OrderItem struct {
	ID          int64   `json:"-" db:"id"`
	OrderID     int64   `json:"-" db:"order_id"`
	ProductID   int64   `json:"productId" db:"product_id"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unitPrice" db:"unit_price"`
	TotalAmount float64 `json:"totalAmount" db:"total_amount"`
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	UserID        int64              `json:"userId" validate:"required"`
	Phone         string             `json:"phone" validate:"required,mobile"`
	Email         string             `json:"email" validate:"required,email"`
	FirstName     string             `json:"firstName" validate:"required"`
	LastName      string             `json:"lastName" validate:"required"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest is a single requested line item.
type OrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// UpdateOrderStatusRequest moves an order to a new status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

// CancelOrderRequest toggles an order between cancelled and new.
type CancelOrderRequest struct {
	Cancelled bool `json:"cancelled"`
}

// OrderResponse is the wire shape of an order with its items.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
