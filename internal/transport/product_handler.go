package transport

import (
	"net/http"
	"time"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/middleware"
	"github.com/OnlyHackers-Source/Farmers.io/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product listing payload. The owner is
// the authenticated principal; prices arrive as decimal strings.
type CreateProductRequest struct {
	Name              string `json:"name" validate:"required"`
	Description       string `json:"description"`
	Price             string `json:"price" validate:"required"`
	Quantity          int    `json:"quantity" validate:"gte=0"`
	Category          string `json:"category" validate:"required"`
	IsRental          bool   `json:"is_rental"`
	RentalPricePerDay string `json:"rental_price_per_day"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Price             string    `json:"price"`
	Quantity          int       `json:"quantity"`
	Category          string    `json:"category"`
	OwnerID           string    `json:"owner_id"`
	IsRental          bool      `json:"is_rental"`
	RentalPricePerDay string    `json:"rental_price_per_day,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func toProductResponse(product *domain.Product) ProductResponse {
	resp := ProductResponse{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Quantity:    product.Quantity,
		Category:    product.Category,
		OwnerID:     product.OwnerID.String(),
		IsRental:    product.IsRental,
		CreatedAt:   product.CreatedAt,
	}
	if product.IsRental {
		resp.RentalPricePerDay = product.RentalPricePerDay.StringFixed(2)
	}
	return resp
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Browsing is open to any
// authenticated user; only farmers may create listings.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, farmerOnly func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(farmerOnly)
			r.Post("/", h.CreateProduct)
		})
	})
}

// CreateProduct handles product listing creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := principalID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return
	}

	input := service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Quantity:    req.Quantity,
		Category:    req.Category,
		IsRental:    req.IsRental,
	}
	if req.IsRental {
		rate, err := decimal.NewFromString(req.RentalPricePerDay)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid rental price per day")
			return
		}
		input.RentalPricePerDay = rate
	}

	product, err := h.catalogService.CreateProduct(r.Context(), ownerID, input)
	if err != nil {
		switch err {
		case service.ErrInvalidPrice, service.ErrInvalidStock, service.ErrMissingRentalRate:
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondLedgerError(w, h.logger, err)
		}
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// GetProduct returns a single product by id
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		respondLedgerError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// ListProducts returns the catalog, optionally filtered with ?category=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondLedgerError(w, h.logger, err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, toProductResponse(product))
	}

	middleware.RespondWithJSON(w, http.StatusOK, responses)
}
