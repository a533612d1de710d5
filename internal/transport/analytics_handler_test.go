package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"stock-shop/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventorySummaryEndpoint(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	_, err := s.inv.Create(ctx, &domain.Product{Name: "mic", Type: "MICROPHONE", Stock: 2, Cost: 500})
	require.NoError(t, err)

	w := s.do(t, "GET", "/analytics/inventory-summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary domain.InventorySummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalSKUs)
	assert.Equal(t, 2, summary.TotalUnits)
	assert.Equal(t, 1000.0, summary.TotalCostValue)
}

func TestTimeSeriesEndpointDefaultsToDay(t *testing.T) {
	s := newTestStack(t)

	// A checkout gives the ledger one row with today's date
	p, err := s.inv.Create(context.Background(), &domain.Product{Name: "mic", Stock: 5})
	require.NoError(t, err)
	w := s.do(t, "POST", "/cart/checkout", map[string]interface{}{
		"customer_id": "c1",
		"items": []map[string]interface{}{
			{"product_no": p.No, "qty": 2, "unit_price": 10.0},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, "GET", "/analytics/timeseries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var series []domain.TimeBucket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	require.Len(t, series, 1)
	assert.Equal(t, 2, series[0].Units)
	assert.Equal(t, 20.0, series[0].Amount)
}

func TestTimeSeriesEndpointRejectsBadPeriod(t *testing.T) {
	s := newTestStack(t)
	w := s.do(t, "GET", "/analytics/timeseries?period=week", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalesDetailEndpointRejectsBadRange(t *testing.T) {
	s := newTestStack(t)
	w := s.do(t, "GET", "/analytics/sales-detail?start=2026-03-31&end=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "GET", "/analytics/sales-detail?start=&end=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLatestSaleEndpointEmptyLedger(t *testing.T) {
	s := newTestStack(t)
	w := s.do(t, "GET", "/analytics/latest-sale", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"latest_sale_date":""}`, w.Body.String())
}

func TestAnalyticsOutputHasNoNaN(t *testing.T) {
	s := newTestStack(t)

	// Sell a product that is not in the catalog at all, then exercise every
	// analytics endpoint: nothing non-finite may appear in any payload.
	_, _, err := s.sales.AppendTransaction(context.Background(), "c1", []domain.SaleLine{
		{ProductNo: 77, ProductName: "orphan", Qty: 1, UnitPrice: 10, TotalLine: 10},
	})
	require.NoError(t, err)

	for _, path := range []string{
		"/analytics/inventory-summary",
		"/analytics/sales-summary",
		"/analytics/timeseries?period=day",
		"/analytics/top-products",
	} {
		w := s.do(t, "GET", path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		body := w.Body.String()
		assert.False(t, strings.Contains(body, "NaN") || strings.Contains(body, "Inf"),
			"non-finite value leaked into %s: %s", path, body)
	}
}
