package domain

import "time"

// SaleLine is one immutable row in the sales ledger. All lines of a
// checkout share the same SaleID and timestamp. Name and unit price are
// snapshots taken at sale time; later catalog edits do not affect them.
type SaleLine struct {
	SaleID      string    `json:"sale_id"`
	TS          time.Time `json:"ts"`
	CustomerID  string    `json:"customer_id"`
	ProductNo   int       `json:"product_no"`
	ProductName string    `json:"product_name"`
	Qty         int       `json:"qty"`
	UnitPrice   float64   `json:"unit_price"`
	TotalLine   float64   `json:"total_line"`
}

// CheckoutItem is one requested line of a checkout. The unit price is
// supplied by the point of sale; the catalog sell price is advisory only.
type CheckoutItem struct {
	ProductNo int     `json:"product_no"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
}

// Receipt summarizes a committed checkout.
type Receipt struct {
	SaleID string    `json:"sale_id"`
	TS     time.Time `json:"ts"`
	Total  float64   `json:"total"`
}
