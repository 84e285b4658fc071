package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topics for ledger lifecycle events. The partition key is the ledger entry
// id so all events for one entry keep their order.
const (
	TopicOrderCreated        = "ledger.order.created"
	TopicOrderStatusChanged  = "ledger.order.status_changed"
	TopicRentalCreated       = "ledger.rental.created"
	TopicRentalStatusChanged = "ledger.rental.status_changed"
)

// Event type names carried in the envelope
const (
	EventOrderCreated        = "OrderCreated"
	EventOrderStatusChanged  = "OrderStatusChanged"
	EventRentalCreated       = "RentalCreated"
	EventRentalStatusChanged = "RentalStatusChanged"
)

// Envelope is the versioned wrapper shared by all ledger events
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload in a version-1 envelope
func NewEnvelope(eventType, producer string, payload interface{}) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producer,
		Payload:      raw,
	}, nil
}

// OrderCreatedPayload describes a newly persisted sale order. Amounts are
// decimal strings to avoid float drift in consumers.
type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	BuyerID     string `json:"buyer_id"`
	SellerID    string `json:"seller_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	TotalAmount string `json:"total_amount"`
}

// RentalCreatedPayload describes a newly persisted rental order
type RentalCreatedPayload struct {
	RentalID    string    `json:"rental_id"`
	RenterID    string    `json:"renter_id"`
	OwnerID     string    `json:"owner_id"`
	ProductID   string    `json:"product_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalAmount string    `json:"total_amount"`
}

// StatusChangedPayload describes a lifecycle transition on a ledger entry
type StatusChangedPayload struct {
	EntryID   string `json:"entry_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
