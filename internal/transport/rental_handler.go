package transport

import (
	"net/http"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/middleware"
	"github.com/OnlyHackers-Source/Farmers.io/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateRentalRequest represents the rental creation payload. The renter is
// the authenticated principal and is never taken from the body.
type CreateRentalRequest struct {
	ProductID string    `json:"product_id" validate:"required,uuid"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

// RentalResponse represents a rental order in API responses
type RentalResponse struct {
	ID          string    `json:"id"`
	RenterID    string    `json:"renter_id"`
	OwnerID     string    `json:"owner_id"`
	ProductID   string    `json:"product_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalAmount string    `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRentalResponse(rental *domain.RentalOrder) RentalResponse {
	return RentalResponse{
		ID:          rental.ID.String(),
		RenterID:    rental.RenterID.String(),
		OwnerID:     rental.OwnerID.String(),
		ProductID:   rental.ProductID.String(),
		StartDate:   rental.StartDate,
		EndDate:     rental.EndDate,
		TotalAmount: rental.TotalAmount.StringFixed(2),
		Status:      string(rental.Status),
		CreatedAt:   rental.CreatedAt,
	}
}

// RentalHandler handles HTTP requests for equipment rentals
type RentalHandler struct {
	ledgerService service.LedgerService
	queryService  service.QueryService
	logger        *zap.Logger
}

// NewRentalHandler creates a new RentalHandler
func NewRentalHandler(ledgerService service.LedgerService, queryService service.QueryService, logger *zap.Logger) *RentalHandler {
	return &RentalHandler{
		ledgerService: ledgerService,
		queryService:  queryService,
		logger:        logger,
	}
}

// RegisterRoutes registers all rental routes; every route requires auth
func (h *RentalHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/rentals", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateRental)
		r.Get("/my-rentals", h.ListMyRentals)
		r.Patch("/{id}/status", h.TransitionStatus)
	})
}

// CreateRental handles rental order creation
func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	renterID, ok := principalID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateRentalRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Rental validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	rental, err := h.ledgerService.CreateRental(r.Context(), renterID, productID, req.StartDate, req.EndDate, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		respondLedgerError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toRentalResponse(rental))
}

// ListMyRentals returns every rental where the caller is renter or owner
func (h *RentalHandler) ListMyRentals(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r, h.logger)
	if !ok {
		return
	}

	details, err := h.queryService.ListRentalsForParticipant(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, h.logger, err)
		return
	}

	if details == nil {
		details = []*domain.RentalDetail{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, details)
}

// TransitionStatus moves a rental through its lifecycle
func (h *RentalHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := principalID(w, r, h.logger); !ok {
		return
	}

	rentalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid rental id")
		return
	}

	var req TransitionStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := domain.ToRentalStatus(req.Status)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown rental status")
		return
	}

	rental, err := h.ledgerService.TransitionRentalStatus(r.Context(), rentalID, status)
	if err != nil {
		respondLedgerError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toRentalResponse(rental))
}
