package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stock-shop/internal/domain"
	"stock-shop/internal/lockfile"

	"github.com/google/uuid"
)

var salesHeader = []string{
	"sale_id", "ts", "customer_id", "product_no",
	"product_name", "qty", "unit_price", "total_line",
}

// SalesRepository is the append-only sales ledger. Rows are never updated
// or deleted once written.
type SalesRepository interface {
	AppendTransaction(ctx context.Context, customerID string, lines []domain.SaleLine) (saleID string, ts time.Time, err error)
	ReadAll(ctx context.Context) ([]domain.SaleLine, error)
}

type csvSalesRepository struct {
	path        string
	lock        *lockfile.Lock
	lockTimeout time.Duration
}

// NewSalesRepository creates a SalesRepository backed by the CSV file at
// path. Appends are serialized by the given lock.
func NewSalesRepository(path string, lock *lockfile.Lock, lockTimeout time.Duration) SalesRepository {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &csvSalesRepository{path: path, lock: lock, lockTimeout: lockTimeout}
}

// ensureFile creates the ledger file with its header row if it does not
// exist yet.
func (r *csvSalesRepository) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat sales file: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("failed to create sales file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(salesHeader); err != nil {
		return fmt.Errorf("failed to write sales header: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// AppendTransaction writes one ledger row per line, all sharing a freshly
// generated sale id and UTC timestamp. The append runs under the sales
// lock and never rewrites existing rows.
func (r *csvSalesRepository) AppendTransaction(ctx context.Context, customerID string, lines []domain.SaleLine) (string, time.Time, error) {
	if err := r.ensureFile(); err != nil {
		return "", time.Time{}, err
	}

	saleID := uuid.New().String()
	ts := time.Now().UTC()

	release, err := r.lock.Acquire(ctx, r.lockTimeout)
	if err != nil {
		return "", time.Time{}, err
	}
	defer release()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to open sales file for append: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	for _, ln := range lines {
		rec := []string{
			saleID,
			ts.Format(time.RFC3339Nano),
			customerID,
			fmt.Sprintf("%d", ln.ProductNo),
			ln.ProductName,
			fmt.Sprintf("%d", ln.Qty),
			formatFloat(ln.UnitPrice),
			formatFloat(ln.TotalLine),
		}
		if err := writer.Write(rec); err != nil {
			return "", time.Time{}, fmt.Errorf("failed to append sale line: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to flush sales file: %w", err)
	}

	return saleID, ts, nil
}

// ReadAll returns every ledger row in file order. No lock is taken: a
// read concurrent with an append may miss the newest transaction, which
// is acceptable staleness for analytics.
func (r *csvSalesRepository) ReadAll(ctx context.Context) ([]domain.SaleLine, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.SaleLine{}, nil
		}
		return nil, fmt.Errorf("failed to open sales file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read sales file: %w", err)
	}
	if len(records) == 0 {
		return []domain.SaleLine{}, nil
	}

	lines := make([]domain.SaleLine, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 8 {
			continue
		}
		ts, _ := time.Parse(time.RFC3339Nano, rec[1])
		lines = append(lines, domain.SaleLine{
			SaleID:      rec[0],
			TS:          ts,
			CustomerID:  rec[2],
			ProductNo:   parseInt(rec[3]),
			ProductName: rec[4],
			Qty:         parseInt(rec[5]),
			UnitPrice:   parseFloat(rec[6]),
			TotalLine:   parseFloat(rec[7]),
		})
	}
	return lines, nil
}
