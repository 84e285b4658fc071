package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/pricing"
	"github.com/OnlyHackers-Source/Farmers.io/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRentalHandler_CreateRental(t *testing.T) {
	ledger := &mockLedgerService{}
	handler := NewRentalHandler(ledger, &mockQueryService{}, zap.NewNop())

	renterID := uuid.New()
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	body, _ := json.Marshal(CreateRentalRequest{
		ProductID: uuid.New().String(),
		StartDate: start,
		EndDate:   start.Add(72 * time.Hour),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/rentals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyKeyHeader, "rental-retry-1")
	req = authenticated(req, renterID, "wholesaler")
	w := httptest.NewRecorder()

	handler.CreateRental(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp RentalResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, renterID.String(), resp.RenterID, "renter must come from the principal")
	assert.Equal(t, "1500.00", resp.TotalAmount)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "rental-retry-1", ledger.lastIdempotencyKey)
}

func TestRentalHandler_CreateRental_Unauthenticated(t *testing.T) {
	handler := NewRentalHandler(&mockLedgerService{}, &mockQueryService{}, zap.NewNop())

	body, _ := json.Marshal(CreateRentalRequest{
		ProductID: uuid.New().String(),
		StartDate: time.Now(),
		EndDate:   time.Now().Add(24 * time.Hour),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/rentals", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateRental(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRentalHandler_CreateRental_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "listing not found or not rentable", err: repository.ErrProductNotFound, wantCode: http.StatusNotFound},
		{name: "invalid date range", err: pricing.ErrInvalidDateRange, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRentalHandler(&mockLedgerService{failWith: tt.err}, &mockQueryService{}, zap.NewNop())

			body, _ := json.Marshal(CreateRentalRequest{
				ProductID: uuid.New().String(),
				StartDate: time.Now().Add(24 * time.Hour),
				EndDate:   time.Now().Add(96 * time.Hour),
			})
			req := httptest.NewRequest(http.MethodPost, "/api/rentals", bytes.NewReader(body))
			req = authenticated(req, uuid.New(), "wholesaler")
			w := httptest.NewRecorder()

			handler.CreateRental(w, req)

			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestRentalHandler_ListMyRentals(t *testing.T) {
	query := &mockQueryService{
		rentals: []*domain.RentalDetail{
			{Rental: domain.RentalOrder{ID: uuid.New(), Status: domain.RentalStatusActive}},
		},
	}
	handler := NewRentalHandler(&mockLedgerService{}, query, zap.NewNop())

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/rentals/my-rentals", nil), uuid.New(), "farmer")
	w := httptest.NewRecorder()

	handler.ListMyRentals(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var details []domain.RentalDetail
	require.NoError(t, json.NewDecoder(w.Body).Decode(&details))
	assert.Len(t, details, 1)
}

func TestRentalHandler_TransitionStatus(t *testing.T) {
	handler := NewRentalHandler(&mockLedgerService{}, &mockQueryService{}, zap.NewNop())

	rentalID := uuid.New()
	body, _ := json.Marshal(TransitionStatusRequest{Status: "active"})
	req := httptest.NewRequest(http.MethodPatch, "/api/rentals/"+rentalID.String()+"/status", bytes.NewReader(body))
	req = authenticated(req, uuid.New(), "farmer")
	req = withURLParam(req, "id", rentalID.String())
	w := httptest.NewRecorder()

	handler.TransitionStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RentalResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "active", resp.Status)
}

func TestRentalHandler_TransitionStatus_UnknownStatus(t *testing.T) {
	handler := NewRentalHandler(&mockLedgerService{}, &mockQueryService{}, zap.NewNop())

	rentalID := uuid.New()
	// Order statuses do not apply to rentals
	body, _ := json.Marshal(TransitionStatusRequest{Status: "shipped"})
	req := httptest.NewRequest(http.MethodPatch, "/api/rentals/"+rentalID.String()+"/status", bytes.NewReader(body))
	req = authenticated(req, uuid.New(), "farmer")
	req = withURLParam(req, "id", rentalID.String())
	w := httptest.NewRecorder()

	handler.TransitionStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
