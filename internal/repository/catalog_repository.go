package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/guard"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogRepository defines the interface for product and rental listing data
// access. The ledger holds an injected reference to it, never global state.
type CatalogRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindRentalListingByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, category string) ([]*domain.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

const productColumns = `id, name, description, price, quantity, category, owner_id, is_rental, rental_price_per_day, created_at, updated_at`

// scanProduct scans a product row, mapping a NULL per-day rate to zero
func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var perDay decimal.NullDecimal

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Quantity,
		&product.Category,
		&product.OwnerID,
		&product.IsRental,
		&perDay,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if perDay.Valid {
		product.RentalPricePerDay = perDay.Decimal
	}

	return product, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *catalogRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, quantity, category, owner_id, is_rental, rental_price_per_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	perDay := decimal.NullDecimal{Decimal: product.RentalPricePerDay, Valid: product.IsRental}

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Quantity,
		product.Category,
		product.OwnerID,
		product.IsRental,
		perDay,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return wrapPersistence("failed to create product", err)
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *catalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, wrapPersistence("failed to find product by ID", err)
	}

	return product, nil
}

// FindRentalListingByID retrieves a product by ID, treating products that are
// not flagged rentable the same as absent ones
func (r *catalogRepository) FindRentalListingByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 AND is_rental = TRUE`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, wrapPersistence("failed to find rental listing by ID", err)
	}

	return product, nil
}

// List retrieves products, optionally filtered by category
func (r *catalogRepository) List(ctx context.Context, category string) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY created_at DESC`, productColumns)
	args := []interface{}{}

	if category != "" {
		query = fmt.Sprintf(`SELECT %s FROM products WHERE category = $1 ORDER BY created_at DESC`, productColumns)
		args = append(args, category)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapPersistence("failed to list products", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, wrapPersistence("failed to scan product", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, wrapPersistence("error iterating products", err)
	}

	return products, nil
}

// AdjustStock changes a product's quantity by delta, refusing adjustments
// that would drive the quantity negative
func (r *catalogRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	query := `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
	`

	result, err := r.db.ExecContext(ctx, query, id, delta)
	if err != nil {
		return wrapPersistence("failed to adjust stock", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapPersistence("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		// Either the product is absent or the adjustment would oversell
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return guard.ErrInsufficientStock
	}

	return nil
}
