package transport

import (
	"errors"
	"net/http"

	"stock-shop/internal/lockfile"
	"stock-shop/internal/middleware"
	"stock-shop/internal/repository"
	"stock-shop/internal/service"

	"go.uber.org/zap"
)

// respondWithServiceError maps the core error taxonomy onto HTTP statuses:
// unknown identifiers are 404, stock conflicts 409, lock timeouts 503
// (retryable), bad analytics parameters 400. Anything else is a 500.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, lockfile.ErrTimeout):
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "store is busy, retry the operation")
	case errors.Is(err, service.ErrInvalidPeriod), errors.Is(err, service.ErrInvalidDateRange):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
