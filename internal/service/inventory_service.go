package service

import (
	"context"

	"stock-shop/internal/domain"
	"stock-shop/internal/repository"
)

// InventoryService defines the catalog business operations.
type InventoryService interface {
	Search(ctx context.Context, nameQuery, typeQuery string) ([]domain.Product, error)
	Update(ctx context.Context, no int, patch domain.ProductPatch) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, nos []int) (int, error)
	AddStock(ctx context.Context, no, qty int) (int, error)
	ReturnBroken(ctx context.Context, no, qty int) error
}

type inventoryService struct {
	repo repository.InventoryRepository
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(repo repository.InventoryRepository) InventoryService {
	return &inventoryService{repo: repo}
}

func (s *inventoryService) Search(ctx context.Context, nameQuery, typeQuery string) ([]domain.Product, error) {
	return s.repo.Search(ctx, nameQuery, typeQuery)
}

func (s *inventoryService) Update(ctx context.Context, no int, patch domain.ProductPatch) (*domain.Product, error) {
	return s.repo.UpdateFields(ctx, no, patch)
}

func (s *inventoryService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return s.repo.Create(ctx, product)
}

func (s *inventoryService) Delete(ctx context.Context, nos []int) (int, error) {
	return s.repo.DeleteMany(ctx, nos)
}

// AddStock registers newly received units and returns the new quantity.
func (s *inventoryService) AddStock(ctx context.Context, no, qty int) (int, error) {
	return s.repo.IncrementStock(ctx, no, qty)
}

// ReturnBroken removes broken units from stock. The quantity on hand must
// cover the return; broken goods cannot drive stock negative.
func (s *inventoryService) ReturnBroken(ctx context.Context, no, qty int) error {
	return s.repo.DecrementStock(ctx, no, qty)
}
