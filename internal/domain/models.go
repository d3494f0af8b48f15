package domain

import "github.com/shopspring/decimal"

type Product struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`    // exact, never negative
	Quantity int             `json:"quantity"` // units in stock, never negative
}

// Value is the stock value of the record, price times quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// InStock reports whether at least one unit can be purchased.
func (p Product) InStock() bool {
	return p.Quantity > 0
}
