package transport

import (
	"net/http"

	"stock-shop/internal/middleware"
	"stock-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AnalyticsHandler handles HTTP requests for read-only aggregates.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// RegisterRoutes registers all analytics routes.
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/inventory-summary", h.InventorySummary)
		r.Get("/sales-summary", h.SalesSummary)
		r.Get("/timeseries", h.TimeSeries)
		r.Get("/top-products", h.TopProducts)
		r.Get("/latest-sale", h.LatestSale)
		r.Get("/sales-detail", h.SalesDetail)
	})
}

func (h *AnalyticsHandler) InventorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsService.InventorySummary(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsService.SalesSummary(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = service.PeriodDay
	}

	series, err := h.analyticsService.TimeSeries(r.Context(), period)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, series)
}

func (h *AnalyticsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	month := r.URL.Query().Get("month")

	top, err := h.analyticsService.TopProducts(r.Context(), period, month)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, top)
}

func (h *AnalyticsHandler) LatestSale(w http.ResponseWriter, r *http.Request) {
	date, err := h.analyticsService.LatestSaleDate(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"latest_sale_date": date})
}

func (h *AnalyticsHandler) SalesDetail(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")

	rows, err := h.analyticsService.SalesDetail(r.Context(), start, end)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rows)
}
