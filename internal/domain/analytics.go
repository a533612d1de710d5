package domain

// InventorySummary is a point-in-time valuation of the whole catalog.
type InventorySummary struct {
	TotalSKUs      int         `json:"total_skus"`
	TotalUnits     int         `json:"total_units"`
	TotalCostValue float64     `json:"total_cost_value"`
	ByType         []TypeUnits `json:"by_type"`
}

// TypeUnits is a per-category unit count. An empty Type groups products
// with no category assigned.
type TypeUnits struct {
	Type  string `json:"type"`
	Units int    `json:"units"`
}

// TimeBucket aggregates sales over one calendar day or month.
type TimeBucket struct {
	Bucket string  `json:"bucket"`
	Orders int     `json:"orders"`
	Units  int     `json:"units"`
	Amount float64 `json:"amount"`
}

// TopProduct is a per-product sales aggregate joined against the catalog
// for cost. Products missing from the catalog carry zero cost.
type TopProduct struct {
	ProductNo   int     `json:"product_no"`
	ProductName string  `json:"product_name"`
	Type        string  `json:"type"`
	Units       int     `json:"units"`
	Revenue     float64 `json:"revenue"`
	Cost        float64 `json:"cost"`
	Profit      float64 `json:"profit"`
}

// SalesSummary is the dashboard bundle: daily and monthly series plus the
// overall top sellers.
type SalesSummary struct {
	Daily       []TimeBucket `json:"daily"`
	Monthly     []TimeBucket `json:"monthly"`
	TopProducts []TopProduct `json:"top_products"`
}

// SalesDetailRow is a per-product breakdown over a date range, comparing
// expected profit at catalog average price with actual profit at the
// prices recorded by the point of sale.
type SalesDetailRow struct {
	ProductNo       int     `json:"product_no"`
	ProductName     string  `json:"product_name"`
	Type            string  `json:"type"`
	UnitsSold       int     `json:"units_sold"`
	Cost            float64 `json:"cost"`
	SellPriceAvg    float64 `json:"sell_price_avg"`
	ActualRevenue   float64 `json:"actual_revenue"`
	ExpectedRevenue float64 `json:"expected_revenue"`
	ActualProfit    float64 `json:"actual_profit"`
	ExpectedProfit  float64 `json:"expected_profit"`
}
