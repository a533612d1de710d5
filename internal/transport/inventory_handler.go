package transport

import (
	"net/http"
	"strconv"

	"stock-shop/internal/domain"
	"stock-shop/internal/middleware"
	"stock-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest is the payload for adding a catalog product. The
// identifier is assigned by the store, never supplied.
type CreateProductRequest struct {
	Name           string  `json:"name" validate:"required"`
	PiecePerCost   int     `json:"piece_per_cost" validate:"gte=0"`
	Stock          int     `json:"number" validate:"gte=0"`
	Cost           float64 `json:"cost" validate:"gte=0"`
	SellPriceLower float64 `json:"sell_price_lower" validate:"gte=0"`
	SellPriceAvg   float64 `json:"sell_price_avg" validate:"gte=0"`
	Profit         float64 `json:"profit"`
	Description    string  `json:"description"`
	Remark         string  `json:"remark"`
	Location       string  `json:"location"`
	Type           string  `json:"type"`
}

// UpdateProductRequest is a partial patch; absent fields stay untouched.
type UpdateProductRequest struct {
	Stock          *int     `json:"number" validate:"omitempty,gte=0"`
	SellPriceLower *float64 `json:"sell_price_lower" validate:"omitempty,gte=0"`
	SellPriceAvg   *float64 `json:"sell_price_avg" validate:"omitempty,gte=0"`
	Remark         *string  `json:"remark"`
	Location       *string  `json:"location"`
	Type           *string  `json:"type"`
}

// DeleteProductsRequest is the bulk-delete payload. An empty or
// partially-matching id set is not an error; unmatched ids are ignored.
type DeleteProductsRequest struct {
	IDs []int `json:"ids"`
}

// StockResponse reports a product's quantity after a stock movement.
type StockResponse struct {
	No    int `json:"no"`
	Stock int `json:"number"`
}

// DeleteResponse reports how many rows a bulk delete removed.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

// InventoryHandler handles HTTP requests for catalog operations.
type InventoryHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(inventoryService service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers all inventory routes.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Post("/", h.Create)
		r.Post("/delete", h.Delete)
		r.Patch("/{no}", h.Update)
		r.Post("/{no}/add-stock", h.AddStock)
		r.Post("/{no}/return-broken", h.ReturnBroken)
	})
}

// Search filters the catalog by optional name and type substrings.
func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	typ := r.URL.Query().Get("type")

	products, err := h.inventoryService.Search(r.Context(), q, typ)
	if err != nil {
		h.logger.Error("Search failed", zap.Error(err))
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create adds a product, assigning the next free identifier.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.inventoryService.Create(r.Context(), &domain.Product{
		Name:           req.Name,
		PiecePerCost:   req.PiecePerCost,
		Stock:          req.Stock,
		Cost:           req.Cost,
		SellPriceLower: req.SellPriceLower,
		SellPriceAvg:   req.SellPriceAvg,
		Profit:         req.Profit,
		Description:    req.Description,
		Remark:         req.Remark,
		Location:       req.Location,
		Type:           req.Type,
	})
	if err != nil {
		h.logger.Error("Create product failed", zap.Error(err))
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created",
		zap.Int("no", created.No),
		zap.String("name", created.Name),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

// Update applies a partial patch to one product.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	no, ok := h.productNo(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update product validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.inventoryService.Update(r.Context(), no, domain.ProductPatch{
		Stock:          req.Stock,
		SellPriceLower: req.SellPriceLower,
		SellPriceAvg:   req.SellPriceAvg,
		Remark:         req.Remark,
		Location:       req.Location,
		Type:           req.Type,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, updated)
}

// Delete removes every product whose identifier is in the request list.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteProductsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deleted, err := h.inventoryService.Delete(r.Context(), req.IDs)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Products deleted", zap.Int("count", deleted))
	middleware.RespondWithJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

// AddStock registers received units for one product.
func (h *InventoryHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	no, ok := h.productNo(w, r)
	if !ok {
		return
	}
	qty, ok := h.qty(w, r)
	if !ok {
		return
	}

	newStock, err := h.inventoryService.AddStock(r.Context(), no, qty)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Stock added", zap.Int("no", no), zap.Int("qty", qty), zap.Int("stock", newStock))
	middleware.RespondWithJSON(w, http.StatusOK, StockResponse{No: no, Stock: newStock})
}

// ReturnBroken removes broken units from a product's stock.
func (h *InventoryHandler) ReturnBroken(w http.ResponseWriter, r *http.Request) {
	no, ok := h.productNo(w, r)
	if !ok {
		return
	}
	qty, ok := h.qty(w, r)
	if !ok {
		return
	}

	if err := h.inventoryService.ReturnBroken(r.Context(), no, qty); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Broken stock returned", zap.Int("no", no), zap.Int("qty", qty))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *InventoryHandler) productNo(w http.ResponseWriter, r *http.Request) (int, bool) {
	no, err := strconv.Atoi(chi.URLParam(r, "no"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product identifier")
		return 0, false
	}
	return no, true
}

func (h *InventoryHandler) qty(w http.ResponseWriter, r *http.Request) (int, bool) {
	qty, err := strconv.Atoi(r.URL.Query().Get("qty"))
	if err != nil || qty < 1 {
		middleware.RespondWithError(w, http.StatusBadRequest, "qty must be a positive integer")
		return 0, false
	}
	return qty, true
}
