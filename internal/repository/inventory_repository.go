package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stock-shop/internal/domain"
	"stock-shop/internal/lockfile"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// DefaultLockTimeout bounds how long a mutation waits for the file lock.
const DefaultLockTimeout = 10 * time.Second

var inventoryHeader = []string{
	"No_", "name", "piece_per_cost", "number", "cost",
	"sell_price_lower", "sell_price_avg", "profit",
	"description", "remark", "location", "type",
}

// InventoryRepository defines data access for the product catalog.
type InventoryRepository interface {
	Search(ctx context.Context, nameQuery, typeQuery string) ([]domain.Product, error)
	FindByNo(ctx context.Context, no int) (*domain.Product, error)
	ReadAll(ctx context.Context) ([]domain.Product, error)
	UpdateFields(ctx context.Context, no int, patch domain.ProductPatch) (*domain.Product, error)
	DecrementStock(ctx context.Context, no, qty int) error
	IncrementStock(ctx context.Context, no, qty int) (int, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteMany(ctx context.Context, nos []int) (int, error)
}

type csvInventoryRepository struct {
	path        string
	lock        *lockfile.Lock
	lockTimeout time.Duration
}

// NewInventoryRepository creates an InventoryRepository backed by the CSV
// file at path. Mutations are serialized by the given lock; reads are
// lock-free snapshot reads.
func NewInventoryRepository(path string, lock *lockfile.Lock, lockTimeout time.Duration) InventoryRepository {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &csvInventoryRepository{path: path, lock: lock, lockTimeout: lockTimeout}
}

// load reads the whole catalog into memory. A missing file is an empty
// catalog, not an error.
func (r *csvInventoryRepository) load() ([]domain.Product, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Product{}, nil
		}
		return nil, fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}

	if len(records) == 0 {
		return []domain.Product{}, nil
	}

	products := make([]domain.Product, 0, len(records)-1)
	for _, rec := range records[1:] {
		products = append(products, recordToProduct(rec))
	}
	return products, nil
}

// save rewrites the whole catalog via write-temp-then-rename so a
// concurrent reader never observes a truncated file.
func (r *csvInventoryRepository) save(products []domain.Product) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".inventory-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp inventory file: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(inventoryHeader); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write inventory header: %w", err)
	}
	for _, p := range products {
		if err := writer.Write(productToRecord(p)); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("failed to write inventory row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush inventory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp inventory file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace inventory file: %w", err)
	}
	return nil
}

// Search filters the catalog by case-insensitive substring match on name
// and/or type. Both filters are optional and combine with AND semantics;
// an empty filter matches everything. No lock is taken.
func (r *csvInventoryRepository) Search(ctx context.Context, nameQuery, typeQuery string) ([]domain.Product, error) {
	products, err := r.load()
	if err != nil {
		return nil, err
	}

	nameQuery = strings.ToLower(nameQuery)
	typeQuery = strings.ToLower(typeQuery)

	matched := []domain.Product{}
	for _, p := range products {
		if nameQuery != "" && !strings.Contains(strings.ToLower(p.Name), nameQuery) {
			continue
		}
		if typeQuery != "" && !strings.Contains(strings.ToLower(p.Type), typeQuery) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

// FindByNo returns the product with the given identifier, or
// ErrProductNotFound. No lock is taken.
func (r *csvInventoryRepository) FindByNo(ctx context.Context, no int) (*domain.Product, error) {
	products, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].No == no {
			p := products[i]
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

// ReadAll returns a snapshot of the whole catalog. No lock is taken; a
// read concurrent with a mutation sees either the pre- or post-write
// state, never a torn file.
func (r *csvInventoryRepository) ReadAll(ctx context.Context) ([]domain.Product, error) {
	return r.load()
}

// UpdateFields applies the non-nil fields of patch to the product with
// the given identifier. The whole read-modify-write runs under one lock
// acquisition.
func (r *csvInventoryRepository) UpdateFields(ctx context.Context, no int, patch domain.ProductPatch) (*domain.Product, error) {
	release, err := r.lock.Acquire(ctx, r.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	products, err := r.load()
	if err != nil {
		return nil, err
	}

	idx := indexByNo(products, no)
	if idx < 0 {
		return nil, ErrProductNotFound
	}

	p := &products[idx]
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.SellPriceLower != nil {
		p.SellPriceLower = *patch.SellPriceLower
	}
	if patch.SellPriceAvg != nil {
		p.SellPriceAvg = *patch.SellPriceAvg
	}
	if patch.Remark != nil {
		p.Remark = *patch.Remark
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}

	if err := r.save(products); err != nil {
		return nil, err
	}

	updated := *p
	return &updated, nil
}

// DecrementStock subtracts qty from the product's stock under lock. The
// stock never goes negative: ErrInsufficientStock is returned and nothing
// is written when the available quantity is too low.
func (r *csvInventoryRepository) DecrementStock(ctx context.Context, no, qty int) error {
	release, err := r.lock.Acquire(ctx, r.lockTimeout)
	if err != nil {
		return err
	}
	defer release()

	products, err := r.load()
	if err != nil {
		return err
	}

	idx := indexByNo(products, no)
	if idx < 0 {
		return ErrProductNotFound
	}
	if products[idx].Stock < qty {
		return fmt.Errorf("%w: product %d has %d, need %d", ErrInsufficientStock, no, products[idx].Stock, qty)
	}
	products[idx].Stock -= qty

	return r.save(products)
}

// IncrementStock adds qty to the product's stock under the same
// per-resource lock as every other mutation, and returns the new quantity.
func (r *csvInventoryRepository) IncrementStock(ctx context.Context, no, qty int) (int, error) {
	release, err := r.lock.Acquire(ctx, r.lockTimeout)
	if err != nil {
		return 0, err
	}
	defer release()

	products, err := r.load()
	if err != nil {
		return 0, err
	}

	idx := indexByNo(products, no)
	if idx < 0 {
		return 0, ErrProductNotFound
	}
	products[idx].Stock += qty

	if err := r.save(products); err != nil {
		return 0, err
	}
	return products[idx].Stock, nil
}

// Create assigns the next identifier (max existing + 1, or 1 for an empty
// catalog) and appends the product. Holding the lock across the max scan
// and the write is what keeps identifiers unique under concurrent creates.
func (r *csvInventoryRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	release, err := r.lock.Acquire(ctx, r.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	products, err := r.load()
	if err != nil {
		return nil, err
	}

	maxNo := 0
	for _, p := range products {
		if p.No > maxNo {
			maxNo = p.No
		}
	}

	created := *product
	created.No = maxNo + 1
	products = append(products, created)

	if err := r.save(products); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteMany removes every product whose identifier appears in nos and
// returns how many rows were removed. Unknown identifiers are ignored.
func (r *csvInventoryRepository) DeleteMany(ctx context.Context, nos []int) (int, error) {
	release, err := r.lock.Acquire(ctx, r.lockTimeout)
	if err != nil {
		return 0, err
	}
	defer release()

	products, err := r.load()
	if err != nil {
		return 0, err
	}

	doomed := make(map[int]bool, len(nos))
	for _, no := range nos {
		doomed[no] = true
	}

	kept := products[:0]
	removed := 0
	for _, p := range products {
		if doomed[p.No] {
			removed++
			continue
		}
		kept = append(kept, p)
	}

	if removed == 0 {
		return 0, nil
	}
	if err := r.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func indexByNo(products []domain.Product, no int) int {
	for i := range products {
		if products[i].No == no {
			return i
		}
	}
	return -1
}

// recordToProduct parses a CSV row leniently: blank or malformed numeric
// cells become 0, missing trailing cells become empty strings.
func recordToProduct(rec []string) domain.Product {
	field := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	return domain.Product{
		No:             parseInt(field(0)),
		Name:           field(1),
		PiecePerCost:   parseInt(field(2)),
		Stock:          parseInt(field(3)),
		Cost:           parseFloat(field(4)),
		SellPriceLower: parseFloat(field(5)),
		SellPriceAvg:   parseFloat(field(6)),
		Profit:         parseFloat(field(7)),
		Description:    field(8),
		Remark:         field(9),
		Location:       field(10),
		Type:           field(11),
	}
}

func productToRecord(p domain.Product) []string {
	return []string{
		strconv.Itoa(p.No),
		p.Name,
		strconv.Itoa(p.PiecePerCost),
		strconv.Itoa(p.Stock),
		formatFloat(p.Cost),
		formatFloat(p.SellPriceLower),
		formatFloat(p.SellPriceAvg),
		formatFloat(p.Profit),
		p.Description,
		p.Remark,
		p.Location,
		p.Type,
	}
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Some exports write integers as "3.0"
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
