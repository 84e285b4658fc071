package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog item offered by a farmer. A product with
// IsRental set is also a rentable equipment listing priced per day.
type Product struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Description       string          `json:"description" db:"description"`
	Price             decimal.Decimal `json:"price" db:"price"`
	Quantity          int             `json:"quantity" db:"quantity"`
	Category          string          `json:"category" db:"category"`
	OwnerID           uuid.UUID       `json:"owner_id" db:"owner_id"`
	IsRental          bool            `json:"is_rental" db:"is_rental"`
	RentalPricePerDay decimal.Decimal `json:"rental_price_per_day" db:"rental_price_per_day"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}
