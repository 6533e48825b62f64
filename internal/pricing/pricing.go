// Package pricing computes line totals and the order summary.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/checkout/internal/model"
)

var (
	// DiscountThreshold is the order total that must be exceeded for the discount to apply.
	DiscountThreshold = decimal.NewFromInt(1000)
	// DiscountRate is the flat share taken off a discounted order.
	DiscountRate = decimal.RequireFromString("0.1")
)

// Summary aggregates the derived order values.
type Summary struct {
	Total           decimal.Decimal
	Discount        decimal.Decimal
	Payable         decimal.Decimal
	DiscountApplied bool
}

// LineTotal returns price × orderedQuantity.
func LineTotal(p model.Product) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.OrderedQuantity)))
}

// OrderTotal sums the line totals of all products.
func OrderTotal(products []model.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(LineTotal(p))
	}
	return total
}

// Summarize computes total, discount and payable for the given products.
func Summarize(products []model.Product) Summary {
	total := OrderTotal(products)
	if !total.GreaterThan(DiscountThreshold) {
		return Summary{Total: total, Discount: decimal.Zero, Payable: total}
	}
	return Summary{
		Total:           total,
		Discount:        total.Mul(DiscountRate),
		Payable:         total.Mul(decimal.NewFromInt(1).Sub(DiscountRate)),
		DiscountApplied: true,
	}
}

// FormatMoney renders d as dollars rounded to cents.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// FormatPrice renders a unit price as-is, without rounding.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.String()
}
