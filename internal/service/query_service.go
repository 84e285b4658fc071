package service

import (
	"context"
	"fmt"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/repository"

	"github.com/google/uuid"
)

// QueryService serves the read side of the ledger. Listings return entries
// where the user participates in either role, without duplicates, enriched
// with both profiles and the product snapshot.
type QueryService interface {
	ListOrdersForParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.OrderDetail, error)
	ListRentalsForParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.RentalDetail, error)
}

type queryService struct {
	orderRepo    repository.OrderRepository
	rentalRepo   repository.RentalRepository
	storeTimeout time.Duration
}

// NewQueryService creates a new instance of QueryService
func NewQueryService(orderRepo repository.OrderRepository, rentalRepo repository.RentalRepository) QueryService {
	return &queryService{
		orderRepo:    orderRepo,
		rentalRepo:   rentalRepo,
		storeTimeout: DefaultStoreTimeout,
	}
}

// ListOrdersForParticipant returns every sale order where the user is buyer
// or seller, newest first
func (s *queryService) ListOrdersForParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.OrderDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	details, err := s.orderRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return details, nil
}

// ListRentalsForParticipant returns every rental where the user is renter or
// equipment owner, newest first
func (s *queryService) ListRentalsForParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.RentalDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	details, err := s.rentalRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	return details, nil
}
