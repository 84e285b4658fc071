package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/guard"
	"github.com/OnlyHackers-Source/Farmers.io/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrRentalNotFound = errors.New("rental order not found")

// RentalRepository defines the interface for rental order ledger entries
type RentalRepository interface {
	// Create validates the rental against the listing under a row lock,
	// prices it and inserts the rental order in a single transaction. A
	// replayed idempotency key returns the previously created entry.
	Create(ctx context.Context, rental *domain.RentalOrder) (*domain.RentalOrder, error)

	// TransitionStatus moves a rental to next under a row lock. Retrying a
	// transition that already happened is a no-op.
	TransitionStatus(ctx context.Context, id uuid.UUID, next domain.RentalStatus) (*domain.RentalOrder, error)

	FindByID(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.RentalDetail, error)
}

type rentalRepository struct {
	db *sql.DB
}

// NewRentalRepository creates a new instance of RentalRepository
func NewRentalRepository(db *sql.DB) RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, renter_id, owner_id, product_id, start_date, end_date, total_amount, status, idempotency_key, created_at, updated_at`

func scanRental(row interface{ Scan(...interface{}) error }) (*domain.RentalOrder, error) {
	rental := &domain.RentalOrder{}
	var status string
	var idemKey sql.NullString

	err := row.Scan(
		&rental.ID,
		&rental.RenterID,
		&rental.OwnerID,
		&rental.ProductID,
		&rental.StartDate,
		&rental.EndDate,
		&rental.TotalAmount,
		&status,
		&idemKey,
		&rental.CreatedAt,
		&rental.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rental.Status = domain.RentalStatus(status)
	rental.IdempotencyKey = idemKey.String
	return rental, nil
}

// Create persists a new rental order. The listing lookup and the insert run
// inside one transaction; a listing that is not flagged rentable is treated
// the same as an absent one.
func (r *rentalRepository) Create(ctx context.Context, rental *domain.RentalOrder) (*domain.RentalOrder, error) {
	created, err := withTx(ctx, r.db, func(tx *sql.Tx) (*domain.RentalOrder, error) {
		if rental.IdempotencyKey != "" {
			existing, err := findRentalByKeyTx(ctx, tx, rental.IdempotencyKey)
			if err == nil {
				return existing, nil
			}
			if !errors.Is(err, ErrRentalNotFound) {
				return nil, err
			}
		}

		product := &domain.Product{}
		var perDay decimal.NullDecimal
		err := tx.QueryRowContext(ctx, `
			SELECT id, owner_id, is_rental, rental_price_per_day
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, rental.ProductID).Scan(&product.ID, &product.OwnerID, &product.IsRental, &perDay)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrProductNotFound
			}
			return nil, wrapPersistence("failed to lock rental listing", err)
		}
		if perDay.Valid {
			product.RentalPricePerDay = perDay.Decimal
		}

		if err := guard.CheckRental(product, rental.StartDate, rental.EndDate, time.Now()); err != nil {
			// Rentable status is part of listing identity for this purpose
			if errors.Is(err, guard.ErrNotRentable) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}

		total, err := pricing.RentalTotal(product.RentalPricePerDay, rental.StartDate, rental.EndDate)
		if err != nil {
			return nil, err
		}

		rental.OwnerID = product.OwnerID
		rental.TotalAmount = total
		rental.Status = domain.RentalStatusPending

		_, err = tx.ExecContext(ctx, `
			INSERT INTO rental_orders (id, renter_id, owner_id, product_id, start_date, end_date, total_amount, status, idempotency_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			rental.ID,
			rental.RenterID,
			rental.OwnerID,
			rental.ProductID,
			rental.StartDate,
			rental.EndDate,
			rental.TotalAmount,
			string(rental.Status),
			nullableKey(rental.IdempotencyKey),
			rental.CreatedAt,
			rental.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		return rental, nil
	})
	if err != nil {
		if isUniqueViolation(err) && rental.IdempotencyKey != "" {
			return r.findByIdempotencyKey(ctx, rental.IdempotencyKey)
		}
		if isUniqueViolation(err) {
			return nil, wrapPersistence("failed to create rental order", err)
		}
		return nil, err
	}

	return created, nil
}

func findRentalByKeyTx(ctx context.Context, tx *sql.Tx, key string) (*domain.RentalOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM rental_orders WHERE idempotency_key = $1`, rentalColumns)

	rental, err := scanRental(tx.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, wrapPersistence("failed to find rental by idempotency key", err)
	}
	return rental, nil
}

func (r *rentalRepository) findByIdempotencyKey(ctx context.Context, key string) (*domain.RentalOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM rental_orders WHERE idempotency_key = $1`, rentalColumns)

	rental, err := scanRental(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, wrapPersistence("failed to find rental by idempotency key", err)
	}
	return rental, nil
}

// TransitionStatus validates and applies a lifecycle transition under a row
// lock
func (r *rentalRepository) TransitionStatus(ctx context.Context, id uuid.UUID, next domain.RentalStatus) (*domain.RentalOrder, error) {
	return withTx(ctx, r.db, func(tx *sql.Tx) (*domain.RentalOrder, error) {
		query := fmt.Sprintf(`SELECT %s FROM rental_orders WHERE id = $1 FOR UPDATE`, rentalColumns)

		rental, err := scanRental(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrRentalNotFound
			}
			return nil, wrapPersistence("failed to lock rental order", err)
		}

		if rental.Status == next {
			return rental, nil
		}

		if !rental.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, rental.Status, next)
		}

		now := time.Now()
		_, err = tx.ExecContext(ctx, `
			UPDATE rental_orders
			SET status = $2, updated_at = $3
			WHERE id = $1
		`, id, string(next), now)
		if err != nil {
			return nil, wrapPersistence("failed to update rental status", err)
		}

		rental.Status = next
		rental.UpdatedAt = now
		return rental, nil
	})
}

// FindByID retrieves a rental order by ID
func (r *rentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.RentalOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM rental_orders WHERE id = $1`, rentalColumns)

	rental, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, wrapPersistence("failed to find rental by ID", err)
	}
	return rental, nil
}

// ListByParticipant retrieves all rentals where the user is renter or owner,
// enriched with participant profiles and the listing snapshot
func (r *rentalRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.RentalDetail, error) {
	query := `
		SELECT ro.id, ro.renter_id, ro.owner_id, ro.product_id, ro.start_date, ro.end_date, ro.total_amount, ro.status, ro.idempotency_key, ro.created_at, ro.updated_at,
		       rp.id, rp.email, rp.full_name, rp.user_type, rp.phone, rp.address, rp.created_at, rp.updated_at,
		       op.id, op.email, op.full_name, op.user_type, op.phone, op.address, op.created_at, op.updated_at,
		       p.id, p.name, p.description, p.price, p.quantity, p.category, p.owner_id, p.is_rental, p.rental_price_per_day, p.created_at, p.updated_at
		FROM rental_orders ro
		JOIN profiles rp ON rp.id = ro.renter_id
		JOIN profiles op ON op.id = ro.owner_id
		JOIN products p ON p.id = ro.product_id
		WHERE ro.renter_id = $1 OR ro.owner_id = $1
		ORDER BY ro.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrapPersistence("failed to list rentals", err)
	}
	defer rows.Close()

	details := []*domain.RentalDetail{}
	for rows.Next() {
		detail, err := scanRentalDetail(rows)
		if err != nil {
			return nil, wrapPersistence("failed to scan rental", err)
		}
		details = append(details, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, wrapPersistence("error iterating rentals", err)
	}

	return details, nil
}

func scanRentalDetail(rows *sql.Rows) (*domain.RentalDetail, error) {
	detail := &domain.RentalDetail{
		Renter:  &domain.User{},
		Owner:   &domain.User{},
		Product: &domain.Product{},
	}
	var status string
	var idemKey sql.NullString
	var perDay decimal.NullDecimal

	err := rows.Scan(
		&detail.Rental.ID,
		&detail.Rental.RenterID,
		&detail.Rental.OwnerID,
		&detail.Rental.ProductID,
		&detail.Rental.StartDate,
		&detail.Rental.EndDate,
		&detail.Rental.TotalAmount,
		&status,
		&idemKey,
		&detail.Rental.CreatedAt,
		&detail.Rental.UpdatedAt,
		&detail.Renter.ID,
		&detail.Renter.Email,
		&detail.Renter.FullName,
		&detail.Renter.UserType,
		&detail.Renter.Phone,
		&detail.Renter.Address,
		&detail.Renter.CreatedAt,
		&detail.Renter.UpdatedAt,
		&detail.Owner.ID,
		&detail.Owner.Email,
		&detail.Owner.FullName,
		&detail.Owner.UserType,
		&detail.Owner.Phone,
		&detail.Owner.Address,
		&detail.Owner.CreatedAt,
		&detail.Owner.UpdatedAt,
		&detail.Product.ID,
		&detail.Product.Name,
		&detail.Product.Description,
		&detail.Product.Price,
		&detail.Product.Quantity,
		&detail.Product.Category,
		&detail.Product.OwnerID,
		&detail.Product.IsRental,
		&perDay,
		&detail.Product.CreatedAt,
		&detail.Product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	detail.Rental.Status = domain.RentalStatus(status)
	detail.Rental.IdempotencyKey = idemKey.String
	if perDay.Valid {
		detail.Product.RentalPricePerDay = perDay.Decimal
	}

	return detail, nil
}
