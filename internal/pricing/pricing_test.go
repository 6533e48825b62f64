package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/checkout/internal/model"
)

func product(id, price string, qty int) model.Product {
	return model.Product{ID: id, AvailableCount: 100, Price: decimal.RequireFromString(price), OrderedQuantity: qty}
}

func TestSummarize_AboveThreshold(t *testing.T) {
	s := Summarize([]model.Product{product("a", "600", 1), product("b", "500", 1)})
	assert.True(t, s.DiscountApplied)
	assert.Equal(t, "$1100.00", FormatMoney(s.Total))
	assert.Equal(t, "$110.00", FormatMoney(s.Discount))
	assert.Equal(t, "$990.00", FormatMoney(s.Payable))
}

func TestSummarize_BelowThreshold(t *testing.T) {
	s := Summarize([]model.Product{product("a", "100", 5)})
	assert.False(t, s.DiscountApplied)
	assert.Equal(t, "$0.00", FormatMoney(s.Discount))
	assert.Equal(t, "$500.00", FormatMoney(s.Payable))
}

func TestSummarize_ExactlyThresholdIsNotDiscounted(t *testing.T) {
	s := Summarize([]model.Product{product("a", "250", 4)})
	assert.False(t, s.DiscountApplied)
	assert.Equal(t, "$1000.00", FormatMoney(s.Payable))

	s = Summarize([]model.Product{product("a", "1000.01", 1)})
	assert.True(t, s.DiscountApplied)
	assert.Equal(t, "$100.00", FormatMoney(s.Discount))
	assert.Equal(t, "$900.01", FormatMoney(s.Payable))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.Total.IsZero())
	assert.Equal(t, "$0.00", FormatMoney(s.Payable))
}

func TestLineTotalRounding(t *testing.T) {
	p := product("a", "0.335", 3)
	assert.Equal(t, "$1.01", FormatMoney(LineTotal(p)))
	assert.Equal(t, "$0.335", FormatPrice(p.Price))
	assert.Equal(t, "$0.00", FormatMoney(LineTotal(product("b", "9.99", 0))))
}
