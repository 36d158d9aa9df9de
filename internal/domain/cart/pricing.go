package cart

import "github.com/shopspring/decimal"

// UnitPrice is the flat placeholder price applied to every unit
var UnitPrice = decimal.NewFromInt(10)

// EstimateTotal sums quantity * UnitPrice over the cart
func (s State) EstimateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range s.entries {
		total = total.Add(UnitPrice.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}
	return total
}

// FormatTotal renders a total with two decimals
func FormatTotal(total decimal.Decimal) string {
	return total.StringFixed(2)
}
