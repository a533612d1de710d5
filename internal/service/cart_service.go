package service

import (
	"context"
	"fmt"

	"stock-shop/internal/domain"
	"stock-shop/internal/repository"
)

// CartService handles checkout of a multi-line order.
type CartService interface {
	Checkout(ctx context.Context, customerID string, items []domain.CheckoutItem) (*domain.Receipt, error)
}

type cartService struct {
	inventory repository.InventoryRepository
	sales     repository.SalesRepository
}

// NewCartService creates a new instance of CartService.
func NewCartService(inventory repository.InventoryRepository, sales repository.SalesRepository) CartService {
	return &cartService{inventory: inventory, sales: sales}
}

// Checkout runs in two phases. Phase one validates every item against one
// inventory snapshot and mutates nothing, so a failed validation leaves
// all stocks untouched. Phase two decrements stock per line (each under
// its own lock acquisition) and appends all lines to the ledger as one
// transaction.
//
// The two phases do not share a lock scope: a concurrent stock change
// between them can fail a commit-phase decrement after earlier lines were
// already applied. That partial failure propagates to the caller rather
// than being masked.
func (s *cartService) Checkout(ctx context.Context, customerID string, items []domain.CheckoutItem) (*domain.Receipt, error) {
	snapshot, err := s.inventory.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory snapshot: %w", err)
	}

	byNo := make(map[int]domain.Product, len(snapshot))
	for _, p := range snapshot {
		byNo[p.No] = p
	}

	// First pass: validate against the snapshot
	for _, it := range items {
		p, ok := byNo[it.ProductNo]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", it.ProductNo, repository.ErrProductNotFound)
		}
		if p.Stock < it.Qty {
			return nil, fmt.Errorf("%w: product %d has %d, need %d",
				repository.ErrInsufficientStock, it.ProductNo, p.Stock, it.Qty)
		}
	}

	// Second pass: mutate and build the ledger lines
	saleLines := make([]domain.SaleLine, 0, len(items))
	total := 0.0
	for _, it := range items {
		p := byNo[it.ProductNo]
		lineTotal := it.UnitPrice * float64(it.Qty)
		total += lineTotal

		if err := s.inventory.DecrementStock(ctx, it.ProductNo, it.Qty); err != nil {
			return nil, err
		}

		saleLines = append(saleLines, domain.SaleLine{
			ProductNo:   it.ProductNo,
			ProductName: p.Name,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPrice,
			TotalLine:   lineTotal,
		})
	}

	saleID, ts, err := s.sales.AppendTransaction(ctx, customerID, saleLines)
	if err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	return &domain.Receipt{SaleID: saleID, TS: ts, Total: total}, nil
}
