package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransition is returned when a ledger entry is asked to move to a
// status its lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// OrderStatus represents the lifecycle state of a sale order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions is the forward-only lifecycle: pending -> confirmed ->
// shipped -> delivered, with cancellation allowed from any non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// ToOrderStatus parses a string into a known order status
func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderTransitions[status]; !ok {
		return "", errors.New("invalid order status")
	}
	return status, nil
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status allows no further transitions
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// Order represents a sale transaction between a wholesaler (buyer) and a
// farmer (seller). TotalAmount is a snapshot computed at creation time and is
// never recomputed from the product afterwards.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	BuyerID        uuid.UUID       `json:"buyer_id" db:"buyer_id"`
	SellerID       uuid.UUID       `json:"seller_id" db:"seller_id"`
	ProductID      uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity       int             `json:"quantity" db:"quantity"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status         OrderStatus     `json:"status" db:"status"`
	IdempotencyKey string          `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderDetail is an order enriched with participant and product snapshots for
// display purposes
type OrderDetail struct {
	Order   Order    `json:"order"`
	Buyer   *User    `json:"buyer,omitempty"`
	Seller  *User    `json:"seller,omitempty"`
	Product *Product `json:"product,omitempty"`
}
