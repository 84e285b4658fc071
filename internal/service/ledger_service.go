package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/events"
	"github.com/OnlyHackers-Source/Farmers.io/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultStoreTimeout bounds every store call made by the ledger so no
// operation blocks indefinitely
const DefaultStoreTimeout = 5 * time.Second

// EventPublisher publishes ledger lifecycle events. It must not block the
// request path; *events.Producer satisfies it.
type EventPublisher interface {
	Publish(topic string, key, value []byte)
}

// LedgerService defines the business operations on the order and rental
// ledger. Buyer and renter identities come from the authenticated principal,
// never from request payloads.
type LedgerService interface {
	CreateOrder(ctx context.Context, buyerID, productID uuid.UUID, quantity int, idempotencyKey string) (*domain.Order, error)
	CreateRental(ctx context.Context, renterID, productID uuid.UUID, startDate, endDate time.Time, idempotencyKey string) (*domain.RentalOrder, error)
	TransitionOrderStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) (*domain.Order, error)
	TransitionRentalStatus(ctx context.Context, rentalID uuid.UUID, next domain.RentalStatus) (*domain.RentalOrder, error)
}

type ledgerService struct {
	orderRepo    repository.OrderRepository
	rentalRepo   repository.RentalRepository
	publisher    EventPublisher
	logger       *zap.Logger
	storeTimeout time.Duration
}

// NewLedgerService creates a new instance of LedgerService. The publisher may
// be nil when event publishing is disabled.
func NewLedgerService(
	orderRepo repository.OrderRepository,
	rentalRepo repository.RentalRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		orderRepo:    orderRepo,
		rentalRepo:   rentalRepo,
		publisher:    publisher,
		logger:       logger,
		storeTimeout: DefaultStoreTimeout,
	}
}

// CreateOrder persists a new sale order for the buyer. Validation, pricing,
// role derivation and the stock decrement all happen atomically in the store
// transaction; a validation failure leaves no record.
func (s *ledgerService) CreateOrder(ctx context.Context, buyerID, productID uuid.UUID, quantity int, idempotencyKey string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	now := time.Now()
	order := &domain.Order{
		ID:             uuid.New(),
		BuyerID:        buyerID,
		ProductID:      productID,
		Quantity:       quantity,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", created.ID.String()),
		zap.String("buyer_id", created.BuyerID.String()),
		zap.String("seller_id", created.SellerID.String()),
		zap.String("total_amount", created.TotalAmount.String()),
	)

	s.publish(events.TopicOrderCreated, events.EventOrderCreated, created.ID, events.OrderCreatedPayload{
		OrderID:     created.ID.String(),
		BuyerID:     created.BuyerID.String(),
		SellerID:    created.SellerID.String(),
		ProductID:   created.ProductID.String(),
		Quantity:    created.Quantity,
		TotalAmount: created.TotalAmount.String(),
	})

	return created, nil
}

// CreateRental persists a new rental order for the renter against a rentable
// listing
func (s *ledgerService) CreateRental(ctx context.Context, renterID, productID uuid.UUID, startDate, endDate time.Time, idempotencyKey string) (*domain.RentalOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	now := time.Now()
	rental := &domain.RentalOrder{
		ID:             uuid.New(),
		RenterID:       renterID,
		ProductID:      productID,
		StartDate:      startDate,
		EndDate:        endDate,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.rentalRepo.Create(ctx, rental)
	if err != nil {
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	s.logger.Info("Rental created",
		zap.String("rental_id", created.ID.String()),
		zap.String("renter_id", created.RenterID.String()),
		zap.String("owner_id", created.OwnerID.String()),
		zap.String("total_amount", created.TotalAmount.String()),
	)

	s.publish(events.TopicRentalCreated, events.EventRentalCreated, created.ID, events.RentalCreatedPayload{
		RentalID:    created.ID.String(),
		RenterID:    created.RenterID.String(),
		OwnerID:     created.OwnerID.String(),
		ProductID:   created.ProductID.String(),
		StartDate:   created.StartDate,
		EndDate:     created.EndDate,
		TotalAmount: created.TotalAmount.String(),
	})

	return created, nil
}

// TransitionOrderStatus applies a lifecycle transition to a sale order.
// Transitions are compare-and-set against the current status and safe to
// retry.
func (s *ledgerService) TransitionOrderStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	current, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	oldStatus := current.Status

	updated, err := s.orderRepo.TransitionStatus(ctx, orderID, next)
	if err != nil {
		return nil, fmt.Errorf("failed to transition order status: %w", err)
	}

	if updated.Status != oldStatus {
		s.logger.Info("Order status changed",
			zap.String("order_id", orderID.String()),
			zap.String("from", string(oldStatus)),
			zap.String("to", string(updated.Status)),
		)

		s.publish(events.TopicOrderStatusChanged, events.EventOrderStatusChanged, orderID, events.StatusChangedPayload{
			EntryID:   orderID.String(),
			OldStatus: string(oldStatus),
			NewStatus: string(updated.Status),
		})
	}

	return updated, nil
}

// TransitionRentalStatus applies a lifecycle transition to a rental order
func (s *ledgerService) TransitionRentalStatus(ctx context.Context, rentalID uuid.UUID, next domain.RentalStatus) (*domain.RentalOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	current, err := s.rentalRepo.FindByID(ctx, rentalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rental: %w", err)
	}
	oldStatus := current.Status

	updated, err := s.rentalRepo.TransitionStatus(ctx, rentalID, next)
	if err != nil {
		return nil, fmt.Errorf("failed to transition rental status: %w", err)
	}

	if updated.Status != oldStatus {
		s.logger.Info("Rental status changed",
			zap.String("rental_id", rentalID.String()),
			zap.String("from", string(oldStatus)),
			zap.String("to", string(updated.Status)),
		)

		s.publish(events.TopicRentalStatusChanged, events.EventRentalStatusChanged, rentalID, events.StatusChangedPayload{
			EntryID:   rentalID.String(),
			OldStatus: string(oldStatus),
			NewStatus: string(updated.Status),
		})
	}

	return updated, nil
}

func (s *ledgerService) publish(topic, eventType string, key uuid.UUID, payload interface{}) {
	if s.publisher == nil {
		return
	}

	envelope, err := events.NewEnvelope(eventType, "ledger-api", payload)
	if err != nil {
		s.logger.Error("Failed to build event envelope", zap.Error(err))
		return
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Error("Failed to marshal event envelope", zap.Error(err))
		return
	}

	s.publisher.Publish(topic, []byte(key.String()), value)
}
