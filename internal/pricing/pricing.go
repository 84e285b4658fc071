package pricing

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidDateRange = errors.New("end date must be after start date")
)

// minorUnitPlaces is the precision of the marketplace currency (2 decimal
// places). Totals are rounded half-up for determinism.
const minorUnitPlaces = 2

// SaleTotal computes the total amount of a sale order: unit price times
// quantity, rounded to the currency's minor-unit precision.
func SaleTotal(unitPrice decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}

	total := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return total.Round(minorUnitPlaces), nil
}

// RentalDays computes the billable duration of a rental in whole days. A
// rental spanning any part of a day counts as a full day.
func RentalDays(startDate, endDate time.Time) (int, error) {
	if !endDate.After(startDate) {
		return 0, ErrInvalidDateRange
	}

	hours := endDate.Sub(startDate).Hours()
	return int(math.Ceil(hours / 24)), nil
}

// RentalTotal computes the total amount of a rental order: per-day rate times
// the billable duration between the two dates, rounded to minor-unit
// precision.
func RentalTotal(perDayRate decimal.Decimal, startDate, endDate time.Time) (decimal.Decimal, error) {
	days, err := RentalDays(startDate, endDate)
	if err != nil {
		return decimal.Zero, err
	}

	total := perDayRate.Mul(decimal.NewFromInt(int64(days)))
	return total.Round(minorUnitPlaces), nil
}
