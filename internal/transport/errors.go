package transport

import (
	"errors"
	"net/http"

	"github.com/OnlyHackers-Source/Farmers.io/internal/domain"
	"github.com/OnlyHackers-Source/Farmers.io/internal/guard"
	"github.com/OnlyHackers-Source/Farmers.io/internal/middleware"
	"github.com/OnlyHackers-Source/Farmers.io/internal/pricing"
	"github.com/OnlyHackers-Source/Farmers.io/internal/repository"

	"go.uber.org/zap"
)

// respondLedgerError maps ledger error sentinels onto HTTP statuses: missing
// resources are 404, rejected input is 400, state conflicts are 409 and store
// failures are 503. Anything unrecognized is a 500.
func respondLedgerError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, repository.ErrRentalNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "rental not found")
	case errors.Is(err, pricing.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be greater than zero")
	case errors.Is(err, pricing.ErrInvalidDateRange):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid rental date range")
	case errors.Is(err, guard.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
	case errors.Is(err, domain.ErrInvalidTransition):
		middleware.RespondWithError(w, http.StatusConflict, "invalid status transition")
	case errors.Is(err, repository.ErrPersistence):
		logger.Error("Store failure", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		logger.Error("Unhandled error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
