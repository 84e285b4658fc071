package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrInvalidStock      = errors.New("quantity must not be negative")
	ErrMissingRentalRate = errors.New("rental listings require a per-day price greater than zero")
)

// CatalogService defines the product catalog write and browse operations.
// The owner always comes from the authenticated principal.
type CatalogService interface {
	CreateProduct(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, category string) ([]*domain.Product, error)
}

// CreateProductInput carries the fields a seller supplies when listing a
// product. RentalPricePerDay is ignored unless IsRental is set.
type CreateProductInput struct {
	Name              string
	Description       string
	Price             decimal.Decimal
	Quantity          int
	Category          string
	IsRental          bool
	RentalPricePerDay decimal.Decimal
}

type catalogService struct {
	catalogRepo  repository.CatalogRepository
	storeTimeout time.Duration
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogService{
		catalogRepo:  catalogRepo,
		storeTimeout: DefaultStoreTimeout,
	}
}

// CreateProduct validates and persists a new listing owned by ownerID
func (s *catalogService) CreateProduct(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*domain.Product, error) {
	if input.Price.Cmp(decimal.Zero) <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.Quantity < 0 {
		return nil, ErrInvalidStock
	}
	if input.IsRental && input.RentalPricePerDay.Cmp(decimal.Zero) <= 0 {
		return nil, ErrMissingRentalRate
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Category:    input.Category,
		OwnerID:     ownerID,
		IsRental:    input.IsRental,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.IsRental {
		product.RentalPricePerDay = input.RentalPricePerDay
	}

	if err := s.catalogRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProduct fetches a single listing by id
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	product, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListProducts returns the catalog, optionally filtered by category
func (s *catalogService) ListProducts(ctx context.Context, category string) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	products, err := s.catalogRepo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
