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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for sale order ledger entries
type OrderRepository interface {
	// Create validates the sale against the product under a row lock, prices
	// it, decrements stock and inserts the order in a single transaction.
	// When the order carries an idempotency key that was already used, the
	// previously created order is returned instead of a duplicate.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)

	// TransitionStatus moves an order to next under a row lock. Retrying a
	// transition that already happened is a no-op.
	TransitionStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) (*domain.Order, error)

	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.OrderDetail, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, buyer_id, seller_id, product_id, quantity, total_amount, status, idempotency_key, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	order := &domain.Order{}
	var status string
	var idemKey sql.NullString

	err := row.Scan(
		&order.ID,
		&order.BuyerID,
		&order.SellerID,
		&order.ProductID,
		&order.Quantity,
		&order.TotalAmount,
		&status,
		&idemKey,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	order.IdempotencyKey = idemKey.String
	return order, nil
}

// isUniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullableKey(key string) sql.NullString {
	return sql.NullString{String: key, Valid: key != ""}
}

// Create persists a new sale order. The read-check-write sequence runs inside
// one transaction so two concurrent creates cannot both pass the stock check.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	created, err := withTx(ctx, r.db, func(tx *sql.Tx) (*domain.Order, error) {
		// Replayed idempotency keys return the original entry
		if order.IdempotencyKey != "" {
			existing, err := findOrderByKeyTx(ctx, tx, order.IdempotencyKey)
			if err == nil {
				return existing, nil
			}
			if !errors.Is(err, ErrOrderNotFound) {
				return nil, err
			}
		}

		// Lock the product row so the stock check and the decrement are atomic
		product := &domain.Product{}
		err := tx.QueryRowContext(ctx, `
			SELECT id, price, quantity, owner_id
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, order.ProductID).Scan(&product.ID, &product.Price, &product.Quantity, &product.OwnerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrProductNotFound
			}
			return nil, wrapPersistence("failed to lock product", err)
		}

		if err := guard.CheckSale(product, order.Quantity); err != nil {
			return nil, err
		}

		total, err := pricing.SaleTotal(product.Price, order.Quantity)
		if err != nil {
			return nil, err
		}

		order.SellerID = product.OwnerID
		order.TotalAmount = total
		order.Status = domain.OrderStatusPending

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - $2, updated_at = NOW()
			WHERE id = $1
		`, order.ProductID, order.Quantity)
		if err != nil {
			return nil, wrapPersistence("failed to decrement stock", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (id, buyer_id, seller_id, product_id, quantity, total_amount, status, idempotency_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			order.ID,
			order.BuyerID,
			order.SellerID,
			order.ProductID,
			order.Quantity,
			order.TotalAmount,
			string(order.Status),
			nullableKey(order.IdempotencyKey),
			order.CreatedAt,
			order.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		return order, nil
	})
	if err != nil {
		// A concurrent create with the same idempotency key won the race;
		// the transaction is aborted, so look up the winner outside of it
		if isUniqueViolation(err) && order.IdempotencyKey != "" {
			return r.findByIdempotencyKey(ctx, order.IdempotencyKey)
		}
		if isUniqueViolation(err) {
			return nil, wrapPersistence("failed to create order", err)
		}
		return nil, err
	}

	return created, nil
}

func findOrderByKeyTx(ctx context.Context, tx *sql.Tx, key string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE idempotency_key = $1`, orderColumns)

	order, err := scanOrder(tx.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, wrapPersistence("failed to find order by idempotency key", err)
	}
	return order, nil
}

func (r *orderRepository) findByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE idempotency_key = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, wrapPersistence("failed to find order by idempotency key", err)
	}
	return order, nil
}

// TransitionStatus validates and applies a lifecycle transition under a row
// lock, so concurrent transition requests cannot produce lost updates
func (r *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) (*domain.Order, error) {
	return withTx(ctx, r.db, func(tx *sql.Tx) (*domain.Order, error) {
		query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 FOR UPDATE`, orderColumns)

		order, err := scanOrder(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrOrderNotFound
			}
			return nil, wrapPersistence("failed to lock order", err)
		}

		// Retried transitions are no-ops
		if order.Status == next {
			return order, nil
		}

		if !order.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
		}

		now := time.Now()
		_, err = tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $2, updated_at = $3
			WHERE id = $1
		`, id, string(next), now)
		if err != nil {
			return nil, wrapPersistence("failed to update order status", err)
		}

		order.Status = next
		order.UpdatedAt = now
		return order, nil
	})
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, wrapPersistence("failed to find order by ID", err)
	}
	return order, nil
}

// ListByParticipant retrieves all orders where the user is buyer or seller,
// enriched with participant profiles and the product snapshot. Each order
// appears once even when the user holds both roles.
func (r *orderRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.OrderDetail, error) {
	query := `
		SELECT o.id, o.buyer_id, o.seller_id, o.product_id, o.quantity, o.total_amount, o.status, o.idempotency_key, o.created_at, o.updated_at,
		       b.id, b.email, b.full_name, b.user_type, b.phone, b.address, b.created_at, b.updated_at,
		       s.id, s.email, s.full_name, s.user_type, s.phone, s.address, s.created_at, s.updated_at,
		       p.id, p.name, p.description, p.price, p.quantity, p.category, p.owner_id, p.is_rental, p.rental_price_per_day, p.created_at, p.updated_at
		FROM orders o
		JOIN profiles b ON b.id = o.buyer_id
		JOIN profiles s ON s.id = o.seller_id
		JOIN products p ON p.id = o.product_id
		WHERE o.buyer_id = $1 OR o.seller_id = $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrapPersistence("failed to list orders", err)
	}
	defer rows.Close()

	details := []*domain.OrderDetail{}
	for rows.Next() {
		detail, err := scanOrderDetail(rows)
		if err != nil {
			return nil, wrapPersistence("failed to scan order", err)
		}
		details = append(details, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, wrapPersistence("error iterating orders", err)
	}

	return details, nil
}

func scanOrderDetail(rows *sql.Rows) (*domain.OrderDetail, error) {
	detail := &domain.OrderDetail{
		Buyer:   &domain.User{},
		Seller:  &domain.User{},
		Product: &domain.Product{},
	}
	var status string
	var idemKey sql.NullString
	var perDay decimal.NullDecimal

	err := rows.Scan(
		&detail.Order.ID,
		&detail.Order.BuyerID,
		&detail.Order.SellerID,
		&detail.Order.ProductID,
		&detail.Order.Quantity,
		&detail.Order.TotalAmount,
		&status,
		&idemKey,
		&detail.Order.CreatedAt,
		&detail.Order.UpdatedAt,
		&detail.Buyer.ID,
		&detail.Buyer.Email,
		&detail.Buyer.FullName,
		&detail.Buyer.UserType,
		&detail.Buyer.Phone,
		&detail.Buyer.Address,
		&detail.Buyer.CreatedAt,
		&detail.Buyer.UpdatedAt,
		&detail.Seller.ID,
		&detail.Seller.Email,
		&detail.Seller.FullName,
		&detail.Seller.UserType,
		&detail.Seller.Phone,
		&detail.Seller.Address,
		&detail.Seller.CreatedAt,
		&detail.Seller.UpdatedAt,
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

	detail.Order.Status = domain.OrderStatus(status)
	detail.Order.IdempotencyKey = idemKey.String
	if perDay.Valid {
		detail.Product.RentalPricePerDay = perDay.Decimal
	}

	return detail, nil
}
