package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"stock-shop/internal/domain"
	"stock-shop/internal/repository"
)

var (
	ErrInvalidPeriod    = errors.New("period must be \"day\" or \"month\"")
	ErrInvalidDateRange = errors.New("invalid date range")
)

const (
	PeriodDay   = "day"
	PeriodMonth = "month"

	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	// topProductsLimit caps the top-products endpoint; the dashboard sales
	// summary bundles a longer tail.
	topProductsLimit        = 7
	summaryTopProductsLimit = 20
)

// AnalyticsService computes read-only aggregates over the catalog and the
// sales ledger. No operation mutates state or takes a lock.
type AnalyticsService interface {
	InventorySummary(ctx context.Context) (*domain.InventorySummary, error)
	SalesSummary(ctx context.Context) (*domain.SalesSummary, error)
	TimeSeries(ctx context.Context, period string) ([]domain.TimeBucket, error)
	TopProducts(ctx context.Context, period, month string) ([]domain.TopProduct, error)
	LatestSaleDate(ctx context.Context) (string, error)
	SalesDetail(ctx context.Context, start, end string) ([]domain.SalesDetailRow, error)
}

type analyticsService struct {
	inventory repository.InventoryRepository
	sales     repository.SalesRepository
}

// NewAnalyticsService creates a new instance of AnalyticsService.
func NewAnalyticsService(inventory repository.InventoryRepository, sales repository.SalesRepository) AnalyticsService {
	return &analyticsService{inventory: inventory, sales: sales}
}

// InventorySummary values the whole catalog at cost and counts units per
// category. Products without a category form their own group.
func (s *analyticsService) InventorySummary(ctx context.Context) (*domain.InventorySummary, error) {
	products, err := s.inventory.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.InventorySummary{
		TotalSKUs: len(products),
		ByType:    []domain.TypeUnits{},
	}

	unitsByType := map[string]int{}
	for _, p := range products {
		summary.TotalUnits += p.Stock
		summary.TotalCostValue += float64(p.Stock) * p.Cost
		unitsByType[p.Type] += p.Stock
	}
	summary.TotalCostValue = sanitize(summary.TotalCostValue)

	types := make([]string, 0, len(unitsByType))
	for typ := range unitsByType {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		summary.ByType = append(summary.ByType, domain.TypeUnits{Type: typ, Units: unitsByType[typ]})
	}

	return summary, nil
}

// SalesSummary is the dashboard bundle: daily and monthly time series plus
// the overall top sellers.
func (s *analyticsService) SalesSummary(ctx context.Context) (*domain.SalesSummary, error) {
	lines, err := s.loadParsedSales(ctx)
	if err != nil {
		return nil, err
	}
	costs, err := s.costIndex(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.SalesSummary{
		Daily:       bucketSales(lines, PeriodDay),
		Monthly:     bucketSales(lines, PeriodMonth),
		TopProducts: topProducts(lines, costs, summaryTopProductsLimit),
	}, nil
}

// TimeSeries buckets sales by calendar day or month, ordered ascending.
func (s *analyticsService) TimeSeries(ctx context.Context, period string) ([]domain.TimeBucket, error) {
	if period != PeriodDay && period != PeriodMonth {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	lines, err := s.loadParsedSales(ctx)
	if err != nil {
		return nil, err
	}
	return bucketSales(lines, period), nil
}

// TopProducts ranks products by revenue over the whole ledger, or over one
// calendar month when month is set ("2006-01"). Cost comes from a left
// join to the catalog; products no longer in the catalog cost 0.
func (s *analyticsService) TopProducts(ctx context.Context, period, month string) ([]domain.TopProduct, error) {
	if period != "" && period != PeriodDay && period != PeriodMonth {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	lines, err := s.loadParsedSales(ctx)
	if err != nil {
		return nil, err
	}

	if month != "" {
		filtered := lines[:0]
		for _, ln := range lines {
			if ln.TS.Format(monthLayout) == month {
				filtered = append(filtered, ln)
			}
		}
		lines = filtered
	}

	costs, err := s.costIndex(ctx)
	if err != nil {
		return nil, err
	}
	return topProducts(lines, costs, topProductsLimit), nil
}

// LatestSaleDate returns the calendar date of the most recent sale, or an
// empty string for an empty ledger.
func (s *analyticsService) LatestSaleDate(ctx context.Context) (string, error) {
	lines, err := s.loadParsedSales(ctx)
	if err != nil {
		return "", err
	}

	var latest time.Time
	for _, ln := range lines {
		if ln.TS.After(latest) {
			latest = ln.TS
		}
	}
	if latest.IsZero() {
		return "", nil
	}
	return latest.Format(dateLayout), nil
}

// SalesDetail breaks sales in the inclusive [start, end] date range down
// per product, comparing expected profit at the catalog average sell price
// with actual profit at the prices the point of sale recorded.
func (s *analyticsService) SalesDetail(ctx context.Context, start, end string) ([]domain.SalesDetailRow, error) {
	startDay, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q", ErrInvalidDateRange, start)
	}
	endDay, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q", ErrInvalidDateRange, end)
	}
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidDateRange, end, start)
	}

	lines, err := s.loadParsedSales(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.inventory.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[int]domain.Product, len(products))
	for _, p := range products {
		catalog[p.No] = p
	}

	type acc struct {
		name    string
		units   int
		revenue float64
	}
	byProduct := map[int]*acc{}
	order := []int{}
	for _, ln := range lines {
		// Date-only comparison, both bounds inclusive
		day := ln.TS.Format(dateLayout)
		if day < start || day > end {
			continue
		}
		a, ok := byProduct[ln.ProductNo]
		if !ok {
			a = &acc{name: ln.ProductName}
			byProduct[ln.ProductNo] = a
			order = append(order, ln.ProductNo)
		}
		a.units += ln.Qty
		a.revenue += ln.TotalLine
	}

	rows := make([]domain.SalesDetailRow, 0, len(order))
	for _, no := range order {
		a := byProduct[no]

		// Left join: sales for products absent from the catalog keep zero
		// reference fields instead of failing.
		ref := catalog[no]

		costTotal := float64(a.units) * ref.Cost
		expectedRevenue := float64(a.units) * ref.SellPriceAvg
		rows = append(rows, domain.SalesDetailRow{
			ProductNo:       no,
			ProductName:     a.name,
			Type:            ref.Type,
			UnitsSold:       a.units,
			Cost:            sanitize(ref.Cost),
			SellPriceAvg:    sanitize(ref.SellPriceAvg),
			ActualRevenue:   sanitize(a.revenue),
			ExpectedRevenue: sanitize(expectedRevenue),
			ActualProfit:    sanitize(a.revenue - costTotal),
			ExpectedProfit:  sanitize(expectedRevenue - costTotal),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ActualRevenue > rows[j].ActualRevenue })
	return rows, nil
}

// loadParsedSales reads the ledger and drops rows whose timestamp did not
// parse.
func (s *analyticsService) loadParsedSales(ctx context.Context) ([]domain.SaleLine, error) {
	lines, err := s.sales.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	parsed := make([]domain.SaleLine, 0, len(lines))
	for _, ln := range lines {
		if ln.TS.IsZero() {
			continue
		}
		parsed = append(parsed, ln)
	}
	return parsed, nil
}

// costIndex maps product no to its catalog row for the analytics joins.
func (s *analyticsService) costIndex(ctx context.Context) (map[int]domain.Product, error) {
	products, err := s.inventory.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[int]domain.Product, len(products))
	for _, p := range products {
		idx[p.No] = p
	}
	return idx, nil
}

// bucketKey formats a timestamp as its day or month grouping key.
func bucketKey(ts time.Time, period string) string {
	if period == PeriodMonth {
		return ts.Format(monthLayout)
	}
	return ts.Format(dateLayout)
}

// bucketSales aggregates distinct orders, units, and revenue per time
// bucket, ordered by bucket ascending.
func bucketSales(lines []domain.SaleLine, period string) []domain.TimeBucket {
	type acc struct {
		orders map[string]struct{}
		units  int
		amount float64
	}
	buckets := map[string]*acc{}
	for _, ln := range lines {
		key := bucketKey(ln.TS, period)
		a, ok := buckets[key]
		if !ok {
			a = &acc{orders: map[string]struct{}{}}
			buckets[key] = a
		}
		a.orders[ln.SaleID] = struct{}{}
		a.units += ln.Qty
		a.amount += ln.TotalLine
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.TimeBucket, 0, len(keys))
	for _, k := range keys {
		a := buckets[k]
		out = append(out, domain.TimeBucket{
			Bucket: k,
			Orders: len(a.orders),
			Units:  a.units,
			Amount: sanitize(a.amount),
		})
	}
	return out
}

// topProducts joins sales to the catalog for cost, groups by product name
// and type, and returns the top sellers by revenue descending.
func topProducts(lines []domain.SaleLine, catalog map[int]domain.Product, limit int) []domain.TopProduct {
	type key struct {
		name string
		typ  string
	}
	totals := map[key]*domain.TopProduct{}
	order := []key{}
	for _, ln := range lines {
		ref := catalog[ln.ProductNo] // zero-value cost for unknown products
		k := key{name: ln.ProductName, typ: ref.Type}
		tp, ok := totals[k]
		if !ok {
			tp = &domain.TopProduct{ProductNo: ln.ProductNo, ProductName: ln.ProductName, Type: ref.Type}
			totals[k] = tp
			order = append(order, k)
		}
		lineCost := float64(ln.Qty) * ref.Cost
		tp.Units += ln.Qty
		tp.Revenue += ln.TotalLine
		tp.Cost += lineCost
		tp.Profit += ln.TotalLine - lineCost
	}

	out := make([]domain.TopProduct, 0, len(order))
	for _, k := range order {
		tp := totals[k]
		tp.Revenue = sanitize(tp.Revenue)
		tp.Cost = sanitize(tp.Cost)
		tp.Profit = sanitize(tp.Profit)
		out = append(out, *tp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// sanitize maps NaN and infinities to 0 so serialized analytics output
// never carries a non-finite numeric field.
func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
