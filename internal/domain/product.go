package domain

// Product represents one catalog row in the inventory file.
type Product struct {
	No             int     `json:"no"`
	Name           string  `json:"name"`
	PiecePerCost   int     `json:"piece_per_cost"`
	Stock          int     `json:"number"`
	Cost           float64 `json:"cost"`
	SellPriceLower float64 `json:"sell_price_lower"`
	SellPriceAvg   float64 `json:"sell_price_avg"`
	Profit         float64 `json:"profit"`
	Description    string  `json:"description"`
	Remark         string  `json:"remark"`
	Location       string  `json:"location"`
	Type           string  `json:"type"`
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Stock          *int     `json:"number"`
	SellPriceLower *float64 `json:"sell_price_lower"`
	SellPriceAvg   *float64 `json:"sell_price_avg"`
	Remark         *string  `json:"remark"`
	Location       *string  `json:"location"`
	Type           *string  `json:"type"`
}

// Empty reports whether the patch carries no changes at all.
func (p ProductPatch) Empty() bool {
	return p.Stock == nil && p.SellPriceLower == nil && p.SellPriceAvg == nil &&
		p.Remark == nil && p.Location == nil && p.Type == nil
}
