package service

import (
	"context"
	"testing"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	stored, err := m.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	stored.FullName = user.FullName
	stored.Phone = user.Phone
	stored.Address = user.Address
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func newTestUserService() (UserService, *mockUserRepository, *mockRefreshTokenRepository) {
	userRepo := newMockUserRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	return NewUserService(userRepo, refreshTokenRepo, "test-secret-key"), userRepo, refreshTokenRepo
}

func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, fullName string, userType string) bool {
			service, userRepo, _ := newTestUserService()
			ctx := context.Background()

			user, err := service.Register(ctx, email, password, fullName, userType, "", "")
			if err != nil {
				// If registration fails, skip this test case
				return true
			}

			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
			if err != nil {
				t.Logf("FAIL: Password hash is not a valid bcrypt hash or doesn't match: %v", err)
				return false
			}

			storedUser, err := userRepo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}

			if storedUser.PasswordHash != user.PasswordHash {
				t.Logf("FAIL: Stored password hash doesn't match returned password hash")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15} [A-Z][a-z]{2,15}`),
		gen.OneConstOf(domain.UserTypeFarmer, domain.UserTypeWholesaler),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_JWTTokensCarryUserIDAndType(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("access tokens contain the user id and user type claims", prop.ForAll(
		func(email string, password string, fullName string, userType string) bool {
			service, _, _ := newTestUserService()
			ctx := context.Background()

			user, err := service.Register(ctx, email, password, fullName, userType, "", "")
			if err != nil {
				return true // Skip if registration fails
			}

			accessToken, _, _, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(accessToken)
			if err != nil {
				t.Logf("FAIL: Token validation failed: %v", err)
				return false
			}

			if claims.UserID != user.ID {
				t.Logf("FAIL: User ID claim mismatch. Expected %s, got %s", user.ID, claims.UserID)
				return false
			}

			if claims.Role != userType {
				t.Logf("FAIL: User type claim mismatch. Expected %s, got %s", userType, claims.Role)
				return false
			}

			if claims.ExpiresAt == nil || claims.IssuedAt == nil {
				t.Logf("FAIL: Token missing expiration or issued-at claim")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15} [A-Z][a-z]{2,15}`),
		gen.OneConstOf(domain.UserTypeFarmer, domain.UserTypeWholesaler),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_TokenRefreshRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid refresh token returns new valid access token", prop.ForAll(
		func(email string, password string, fullName string) bool {
			service, _, _ := newTestUserService()
			ctx := context.Background()

			_, err := service.Register(ctx, email, password, fullName, domain.UserTypeFarmer, "", "")
			if err != nil {
				return true // Skip if registration fails
			}

			_, refreshToken, user, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			newAccessToken, err := service.RefreshToken(ctx, refreshToken)
			if err != nil {
				t.Logf("FAIL: Token refresh failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(newAccessToken)
			if err != nil {
				t.Logf("FAIL: New access token validation failed: %v", err)
				return false
			}

			if claims.UserID != user.ID {
				t.Logf("FAIL: User ID mismatch in refreshed token")
				return false
			}

			if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
				t.Logf("FAIL: Refreshed token is already expired")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15} [A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_LogoutInvalidatesRefreshToken(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("logout marks refresh token as revoked", prop.ForAll(
		func(email string, password string, fullName string) bool {
			service, _, refreshTokenRepo := newTestUserService()
			ctx := context.Background()

			_, err := service.Register(ctx, email, password, fullName, domain.UserTypeWholesaler, "", "")
			if err != nil {
				return true // Skip if registration fails
			}

			_, refreshToken, _, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			if _, err := service.RefreshToken(ctx, refreshToken); err != nil {
				t.Logf("FAIL: Refresh token should work before logout: %v", err)
				return false
			}

			if err := service.Logout(ctx, refreshToken); err != nil {
				t.Logf("FAIL: Logout failed: %v", err)
				return false
			}

			if _, err := service.RefreshToken(ctx, refreshToken); err != ErrInvalidToken {
				t.Logf("FAIL: Expected ErrInvalidToken after logout, got: %v", err)
				return false
			}

			if _, err := refreshTokenRepo.FindByToken(ctx, refreshToken); err != repository.ErrRefreshTokenRevoked {
				t.Logf("FAIL: Token should be revoked in repository, got error: %v", err)
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15} [A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegister_RejectsUnknownUserType(t *testing.T) {
	service, _, _ := newTestUserService()

	_, err := service.Register(context.Background(), "farmer@fields.com", "secret-pass", "Ravi Kumar", "admin", "", "")
	assert.ErrorIs(t, err, ErrInvalidUserType)
}

func TestLogoutAll_RevokesEverySession(t *testing.T) {
	service, _, refreshTokenRepo := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "farmer@fields.com", "secret-pass", "Ravi Kumar", domain.UserTypeFarmer, "", "")
	require.NoError(t, err)

	_, first, _, err := service.Login(ctx, "farmer@fields.com", "secret-pass")
	require.NoError(t, err)
	_, second, _, err := service.Login(ctx, "farmer@fields.com", "secret-pass")
	require.NoError(t, err)

	require.NoError(t, service.LogoutAll(ctx, user.ID))

	_, err = refreshTokenRepo.FindByToken(ctx, first)
	assert.ErrorIs(t, err, repository.ErrRefreshTokenRevoked)
	_, err = refreshTokenRepo.FindByToken(ctx, second)
	assert.ErrorIs(t, err, repository.ErrRefreshTokenRevoked)
}

func TestUpdateProfile_KeepsUnsetFields(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "farmer@fields.com", "secret-pass", "Ravi Kumar", domain.UserTypeFarmer, "+911112223334", "Old Village Road")
	require.NoError(t, err)

	updated, err := service.UpdateProfile(ctx, user.ID, "", "+919998887776", "")
	require.NoError(t, err)

	assert.Equal(t, "Ravi Kumar", updated.FullName)
	assert.Equal(t, "+919998887776", updated.Phone)
	assert.Equal(t, "Old Village Road", updated.Address)
}
