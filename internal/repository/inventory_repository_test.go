package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stock-shop/internal/domain"
	"stock-shop/internal/lockfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInventoryRepo(t *testing.T) InventoryRepository {
	t.Helper()
	dir := t.TempDir()
	lock := lockfile.New(filepath.Join(dir, "locks", "inventory.lock"))
	return NewInventoryRepository(filepath.Join(dir, "data.csv"), lock, 5*time.Second)
}

func seedProduct(t *testing.T, repo InventoryRepository, name, typ string, stock int, cost float64) *domain.Product {
	t.Helper()
	created, err := repo.Create(context.Background(), &domain.Product{
		Name:         name,
		PiecePerCost: 1,
		Stock:        stock,
		Cost:         cost,
		SellPriceAvg: cost * 2,
		Type:         typ,
	})
	require.NoError(t, err)
	return created
}

func TestCreateAssignsSequentialIdentifiers(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()

	// Empty catalog assigns 1
	first := seedProduct(t, repo, "wireless mic", "MICROPHONE", 10, 900)
	assert.Equal(t, 1, first.No)

	second := seedProduct(t, repo, "car amp", "AMP", 4, 1500)
	assert.Equal(t, 2, second.No)

	// Sparse identifiers: after deleting 1, max is still 2, next is 3
	removed, err := repo.DeleteMany(ctx, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	third := seedProduct(t, repo, "usb mp3 player", "USB MP3", 7, 300)
	assert.Equal(t, 3, third.No)
}

func TestCreateRespectsSparseMaxIdentifier(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		seedProduct(t, repo, "p", "T", 1, 1)
	}
	// Leave only identifier 7 behind
	_, err := repo.DeleteMany(ctx, []int{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	next := seedProduct(t, repo, "after the gap", "T", 1, 1)
	assert.Equal(t, 8, next.No, "next identifier follows max existing, not row count")
}

func TestDecrementStock(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()
	p := seedProduct(t, repo, "speaker", "SPEAKER", 2, 100)

	// Exact decrement down to zero succeeds
	require.NoError(t, repo.DecrementStock(ctx, p.No, 2))
	got, err := repo.FindByNo(ctx, p.No)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	// Over-decrement fails and leaves stock untouched
	err = repo.DecrementStock(ctx, p.No, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	got, err = repo.FindByNo(ctx, p.No)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestDecrementStockInsufficientLeavesStockUnchanged(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()
	p := seedProduct(t, repo, "speaker", "SPEAKER", 2, 100)

	err := repo.DecrementStock(ctx, p.No, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err := repo.FindByNo(ctx, p.No)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	repo := newTestInventoryRepo(t)
	err := repo.DecrementStock(context.Background(), 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestIncrementStockReturnsNewQuantity(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()
	p := seedProduct(t, repo, "mixer", "MIXER", 3, 2000)

	newQty, err := repo.IncrementStock(ctx, p.No, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, newQty)

	_, err = repo.IncrementStock(ctx, 404, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateFieldsAppliesOnlyNonNilFields(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()
	p := seedProduct(t, repo, "mic stand", "ACCESSORY", 5, 150)

	newPrice := 420.0
	newRemark := "display unit"
	updated, err := repo.UpdateFields(ctx, p.No, domain.ProductPatch{
		SellPriceAvg: &newPrice,
		Remark:       &newRemark,
	})
	require.NoError(t, err)

	assert.Equal(t, 420.0, updated.SellPriceAvg)
	assert.Equal(t, "display unit", updated.Remark)
	// Untouched fields survive
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, "mic stand", updated.Name)
	assert.Equal(t, "ACCESSORY", updated.Type)
}

func TestUpdateFieldsAllNilPatchIsNoOp(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()
	p := seedProduct(t, repo, "cable", "ACCESSORY", 9, 25)

	before, err := repo.FindByNo(ctx, p.No)
	require.NoError(t, err)

	after, err := repo.UpdateFields(ctx, p.No, domain.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
}

func TestUpdateFieldsNotFound(t *testing.T) {
	repo := newTestInventoryRepo(t)
	qty := 1
	_, err := repo.UpdateFields(context.Background(), 42, domain.ProductPatch{Stock: &qty})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteManyCountsOnlyMatches(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()
	seedProduct(t, repo, "a", "T", 1, 1)
	seedProduct(t, repo, "b", "T", 1, 1)
	seedProduct(t, repo, "c", "T", 1, 1)

	// Partial match: 2 and 99, only 2 exists
	removed, err := repo.DeleteMany(ctx, []int{2, 99})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Empty id set removes nothing
	removed, err = repo.DeleteMany(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	all, err := repo.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSearchFilters(t *testing.T) {
	repo := newTestInventoryRepo(t)
	ctx := context.Background()
	seedProduct(t, repo, "USB MP3 player DZ-529", "USB MP3", 3, 550)
	seedProduct(t, repo, "USB MP3 player XL-9", "USB MP3", 2, 1100)
	seedProduct(t, repo, "AMP FANNY AV-168A", "AMP", 1, 2900)
	seedProduct(t, repo, "no category item", "", 1, 10)

	// Case-insensitive name substring
	got, err := repo.Search(ctx, "usb mp3", "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Type filter alone
	got, err = repo.Search(ctx, "", "amp")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// AND semantics across both filters
	got, err = repo.Search(ctx, "xl-9", "usb")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "USB MP3 player XL-9", got[0].Name)

	// No filters match everything, including products with empty type
	got, err = repo.Search(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestSearchMissingFileIsEmptyCatalog(t *testing.T) {
	repo := newTestInventoryRepo(t)
	got, err := repo.Search(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
