package repository

import (
	"context"
	"testing"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/guard"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(testDB)

	owner := createTestUser(t, domain.UserTypeFarmer)
	listing := createTestRentalListing(t, owner.ID, "500.00")

	stored, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)

	assert.Equal(t, listing.Name, stored.Name)
	assert.True(t, stored.Price.Equal(listing.Price))
	assert.Equal(t, listing.Quantity, stored.Quantity)
	assert.Equal(t, owner.ID, stored.OwnerID)
	assert.True(t, stored.IsRental)
	assert.True(t, stored.RentalPricePerDay.Equal(decimal.RequireFromString("500.00")))
}

func TestCatalogRepository_FindByID_Unknown(t *testing.T) {
	_, err := NewCatalogRepository(testDB).FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogRepository_FindRentalListingByID(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(testDB)

	owner := createTestUser(t, domain.UserTypeFarmer)
	listing := createTestRentalListing(t, owner.ID, "500.00")
	plain := createTestProduct(t, owner.ID, "85.00", 10)

	found, err := repo.FindRentalListingByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, found.ID)

	// A product that is not flagged rentable is treated as absent
	_, err = repo.FindRentalListingByID(ctx, plain.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogRepository_AdjustStock(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(testDB)

	owner := createTestUser(t, domain.UserTypeFarmer)
	product := createTestProduct(t, owner.ID, "85.00", 10)

	require.NoError(t, repo.AdjustStock(ctx, product.ID, -4))

	stored, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Quantity)

	require.NoError(t, repo.AdjustStock(ctx, product.ID, 2))

	stored, err = repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Quantity)
}

func TestCatalogRepository_AdjustStock_CannotGoNegative(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(testDB)

	owner := createTestUser(t, domain.UserTypeFarmer)
	product := createTestProduct(t, owner.ID, "85.00", 3)

	err := repo.AdjustStock(ctx, product.ID, -4)
	assert.ErrorIs(t, err, guard.ErrInsufficientStock)

	stored, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
}

func TestCatalogRepository_AdjustStock_Unknown(t *testing.T) {
	err := NewCatalogRepository(testDB).AdjustStock(context.Background(), uuid.New(), -1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogRepository_ListByCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository(testDB)

	owner := createTestUser(t, domain.UserTypeFarmer)
	product := createTestProduct(t, owner.ID, "85.00", 10)

	grains, err := repo.List(ctx, "grains")
	require.NoError(t, err)

	found := false
	for _, p := range grains {
		assert.Equal(t, "grains", p.Category)
		if p.ID == product.ID {
			found = true
		}
	}
	assert.True(t, found, "created product should appear in its category listing")
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	user := createTestUser(t, domain.UserTypeWholesaler)

	byEmail, err := repo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, domain.UserTypeWholesaler, byEmail.UserType)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	user := createTestUser(t, domain.UserTypeFarmer)

	dup := *user
	dup.ID = uuid.New()
	err := repo.Create(ctx, &dup)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	user := createTestUser(t, domain.UserTypeFarmer)
	user.FullName = "Updated Name"
	user.Phone = "+911234567890"
	user.Address = "New Village Road 7"

	require.NoError(t, repo.UpdateProfile(ctx, user))

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", stored.FullName)
	assert.Equal(t, "+911234567890", stored.Phone)
	assert.Equal(t, "New Village Road 7", stored.Address)
}
