package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalStatus represents the lifecycle state of a rental order
type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusPending:   {RentalStatusActive, RentalStatusCancelled},
	RentalStatusActive:    {RentalStatusCompleted, RentalStatusCancelled},
	RentalStatusCompleted: {},
	RentalStatusCancelled: {},
}

// ToRentalStatus parses a string into a known rental status
func ToRentalStatus(s string) (RentalStatus, error) {
	status := RentalStatus(s)
	if _, ok := rentalTransitions[status]; !ok {
		return "", errors.New("invalid rental status")
	}
	return status, nil
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status allows no further transitions
func (s RentalStatus) IsTerminal() bool {
	return len(rentalTransitions[s]) == 0
}

// RentalOrder represents an equipment rental between a renter and the listing
// owner. TotalAmount is a creation-time snapshot of rate times duration.
type RentalOrder struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	RenterID       uuid.UUID       `json:"renter_id" db:"renter_id"`
	OwnerID        uuid.UUID       `json:"owner_id" db:"owner_id"`
	ProductID      uuid.UUID       `json:"product_id" db:"product_id"`
	StartDate      time.Time       `json:"start_date" db:"start_date"`
	EndDate        time.Time       `json:"end_date" db:"end_date"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status         RentalStatus    `json:"status" db:"status"`
	IdempotencyKey string          `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// RentalDetail is a rental order enriched with participant and product
// snapshots for display purposes
type RentalDetail struct {
	Rental  RentalOrder `json:"rental"`
	Renter  *User       `json:"renter,omitempty"`
	Owner   *User       `json:"owner,omitempty"`
	Product *Product    `json:"product,omitempty"`
}
