package transport

import (
	"net/http"

	"stock-shop/internal/domain"
	"stock-shop/internal/middleware"
	"stock-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutItemRequest is one order line. The unit price is whatever the
// point of sale agreed with the customer; the catalog price is advisory.
type CheckoutItemRequest struct {
	ProductNo int     `json:"product_no" validate:"required,gte=1"`
	Qty       int     `json:"qty" validate:"required,gte=1"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// CheckoutRequest is the checkout payload.
type CheckoutRequest struct {
	CustomerID string                `json:"customer_id" validate:"required"`
	Items      []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CartHandler handles HTTP requests for checkout.
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Post("/checkout", h.Checkout)
	})
}

// Checkout validates and commits a multi-line sale, returning the receipt.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]domain.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.CheckoutItem{
			ProductNo: it.ProductNo,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
		})
	}

	receipt, err := h.cartService.Checkout(r.Context(), req.CustomerID, items)
	if err != nil {
		h.logger.Warn("Checkout failed",
			zap.String("customer_id", req.CustomerID),
			zap.Error(err),
		)
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Checkout completed",
		zap.String("sale_id", receipt.SaleID),
		zap.String("customer_id", req.CustomerID),
		zap.Int("lines", len(items)),
		zap.Float64("total", receipt.Total),
	)
	middleware.RespondWithJSON(w, http.StatusOK, receipt)
}
