// Package guard enforces ledger preconditions against a resolved catalog
// product before any write. Checks are pure so callers can re-run them under a
// row lock inside the same transaction that persists the ledger entry.
package guard

import (
	"errors"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/pricing"
)

var (
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")

	// ErrNotRentable marks a product that exists but is not flagged as a
	// rental listing. For rental purposes this is equivalent to not-found.
	ErrNotRentable = errors.New("product is not a rental listing")
)

// CheckSale validates a sale request against the resolved product
func CheckSale(product *domain.Product, quantity int) error {
	if quantity <= 0 {
		return pricing.ErrInvalidQuantity
	}
	if quantity > product.Quantity {
		return ErrInsufficientStock
	}
	return nil
}

// CheckRental validates a rental request against the resolved listing. Both
// dates must be future-or-present relative to now, at day granularity.
func CheckRental(product *domain.Product, startDate, endDate, now time.Time) error {
	if !product.IsRental {
		return ErrNotRentable
	}
	if !endDate.After(startDate) {
		return pricing.ErrInvalidDateRange
	}

	today := now.UTC().Truncate(24 * time.Hour)
	if startDate.Before(today) {
		return pricing.ErrInvalidDateRange
	}
	return nil
}
