package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stock-shop/internal/domain"
	"stock-shop/internal/lockfile"
	"stock-shop/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) (repository.InventoryRepository, repository.SalesRepository) {
	t.Helper()
	dir := t.TempDir()
	inv := repository.NewInventoryRepository(
		filepath.Join(dir, "data.csv"),
		lockfile.New(filepath.Join(dir, "locks", "inventory.lock")),
		5*time.Second,
	)
	sales := repository.NewSalesRepository(
		filepath.Join(dir, "sales.csv"),
		lockfile.New(filepath.Join(dir, "locks", "sales.lock")),
		5*time.Second,
	)
	return inv, sales
}

func TestCheckoutHappyPath(t *testing.T) {
	inv, sales := newTestStores(t)
	ctx := context.Background()

	mic, err := inv.Create(ctx, &domain.Product{Name: "wireless mic", Stock: 10, Cost: 900})
	require.NoError(t, err)
	amp, err := inv.Create(ctx, &domain.Product{Name: "car amp", Stock: 5, Cost: 1500})
	require.NoError(t, err)

	svc := NewCartService(inv, sales)
	receipt, err := svc.Checkout(ctx, "walkin-1", []domain.CheckoutItem{
		{ProductNo: mic.No, Qty: 2, UnitPrice: 1800},
		{ProductNo: amp.No, Qty: 1, UnitPrice: 2900},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.SaleID)
	assert.Equal(t, 2*1800.0+2900.0, receipt.Total)

	// Stock decremented per line
	gotMic, err := inv.FindByNo(ctx, mic.No)
	require.NoError(t, err)
	assert.Equal(t, 8, gotMic.Stock)
	gotAmp, err := inv.FindByNo(ctx, amp.No)
	require.NoError(t, err)
	assert.Equal(t, 4, gotAmp.Stock)

	// Ledger carries denormalized names and the POS unit price
	lines, err := sales.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "wireless mic", lines[0].ProductName)
	assert.Equal(t, 1800.0, lines[0].UnitPrice)
	assert.Equal(t, receipt.SaleID, lines[0].SaleID)
	assert.Equal(t, receipt.SaleID, lines[1].SaleID)
}

func TestCheckoutInsufficientStockMutatesNothing(t *testing.T) {
	inv, sales := newTestStores(t)
	ctx := context.Background()

	a, err := inv.Create(ctx, &domain.Product{Name: "a", Stock: 10})
	require.NoError(t, err)
	b, err := inv.Create(ctx, &domain.Product{Name: "b", Stock: 3})
	require.NoError(t, err)

	svc := NewCartService(inv, sales)
	_, err = svc.Checkout(ctx, "walkin-1", []domain.CheckoutItem{
		{ProductNo: a.No, Qty: 2, UnitPrice: 10},
		{ProductNo: b.No, Qty: 5, UnitPrice: 10}, // only 3 available
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)

	// Validation failed before any mutation: both stocks unchanged
	gotA, err := inv.FindByNo(ctx, a.No)
	require.NoError(t, err)
	assert.Equal(t, 10, gotA.Stock)
	gotB, err := inv.FindByNo(ctx, b.No)
	require.NoError(t, err)
	assert.Equal(t, 3, gotB.Stock)

	// And no ledger rows
	lines, err := sales.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	inv, sales := newTestStores(t)
	svc := NewCartService(inv, sales)

	_, err := svc.Checkout(context.Background(), "walkin-1", []domain.CheckoutItem{
		{ProductNo: 42, Qty: 1, UnitPrice: 10},
	})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

// Feature: stock-shop, Property 3: Receipt total matches submitted lines
func TestProperty_CheckoutTotalAndStockConservation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("receipt total is the sum of qty*unit_price and stocks drop by qty", prop.ForAll(
		func(stocks []int, qtys []int, prices []float64) bool {
			n := len(stocks)
			if len(qtys) < n {
				n = len(qtys)
			}
			if len(prices) < n {
				n = len(prices)
			}
			if n == 0 {
				return true
			}

			ctx := context.Background()
			inv, sales := newTestStores(t)
			svc := NewCartService(inv, sales)

			items := make([]domain.CheckoutItem, 0, n)
			expectedTotal := 0.0
			for i := 0; i < n; i++ {
				stock := stocks[i] + qtys[i] // guarantee enough stock
				created, err := inv.Create(ctx, &domain.Product{Name: "p", Stock: stock})
				if err != nil {
					t.Logf("FAIL: Failed to seed product: %v", err)
					return false
				}
				items = append(items, domain.CheckoutItem{
					ProductNo: created.No,
					Qty:       qtys[i],
					UnitPrice: prices[i],
				})
				expectedTotal += float64(qtys[i]) * prices[i]
			}

			receipt, err := svc.Checkout(ctx, "prop-customer", items)
			if err != nil {
				t.Logf("FAIL: Checkout failed: %v", err)
				return false
			}

			if receipt.Total < expectedTotal-0.0001 || receipt.Total > expectedTotal+0.0001 {
				t.Logf("FAIL: Total mismatch. Expected %f, got %f", expectedTotal, receipt.Total)
				return false
			}

			for i, it := range items {
				p, err := inv.FindByNo(ctx, it.ProductNo)
				if err != nil {
					t.Logf("FAIL: Failed to re-read product %d: %v", it.ProductNo, err)
					return false
				}
				if p.Stock != stocks[i] {
					t.Logf("FAIL: Stock mismatch for product %d. Expected %d, got %d",
						it.ProductNo, stocks[i], p.Stock)
					return false
				}
			}

			return true
		},
		gen.SliceOfN(3, gen.IntRange(0, 50)),
		gen.SliceOfN(3, gen.IntRange(1, 5)),
		gen.SliceOfN(3, gen.Float64Range(0.5, 5000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
