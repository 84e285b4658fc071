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

// IdempotencyKeyHeader lets clients retry creates safely; a replayed key
// returns the originally created entry.
const IdempotencyKeyHeader = "Idempotency-Key"

// CreateOrderRequest represents the order creation payload. The buyer is the
// authenticated principal and is never taken from the body.
type CreateOrderRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// TransitionStatusRequest represents a status transition payload
type TransitionStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse represents a sale order in API responses. Money is a decimal
// string.
type OrderResponse struct {
	ID          string    `json:"id"`
	BuyerID     string    `json:"buyer_id"`
	SellerID    string    `json:"seller_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	TotalAmount string    `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:          order.ID.String(),
		BuyerID:     order.BuyerID.String(),
		SellerID:    order.SellerID.String(),
		ProductID:   order.ProductID.String(),
		Quantity:    order.Quantity,
		TotalAmount: order.TotalAmount.StringFixed(2),
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
	}
}

// OrderHandler handles HTTP requests for sale orders
type OrderHandler struct {
	ledgerService service.LedgerService
	queryService  service.QueryService
	logger        *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(ledgerService service.LedgerService, queryService service.QueryService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		ledgerService: ledgerService,
		queryService:  queryService,
		logger:        logger,
	}
}

// RegisterRoutes registers all order routes; every route requires auth
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateOrder)
		r.Get("/my-orders", h.ListMyOrders)
		r.Patch("/{id}/status", h.TransitionStatus)
	})
}

// CreateOrder handles sale order creation
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := principalID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

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

	order, err := h.ledgerService.CreateOrder(r.Context(), buyerID, productID, req.Quantity, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		respondLedgerError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toOrderResponse(order))
}

// ListMyOrders returns every order where the caller is buyer or seller
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r, h.logger)
	if !ok {
		return
	}

	details, err := h.queryService.ListOrdersForParticipant(r.Context(), userID)
	if err != nil {
		respondLedgerError(w, h.logger, err)
		return
	}

	if details == nil {
		details = []*domain.OrderDetail{}
	}
	middleware.RespondWithJSON(w, http.StatusOK, details)
}

// TransitionStatus moves an order through its lifecycle
func (h *OrderHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := principalID(w, r, h.logger); !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
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

	status, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	order, err := h.ledgerService.TransitionOrderStatus(r.Context(), orderID, status)
	if err != nil {
		respondLedgerError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponse(order))
}
