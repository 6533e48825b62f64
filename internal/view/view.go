// Package view turns checkout state into display values. Everything here is pure:
// rendering never logs or publishes, callers trigger diagnostics separately.
package view

import (
	"github.com/fairyhunter13/checkout/internal/checkout"
	"github.com/fairyhunter13/checkout/internal/model"
	"github.com/fairyhunter13/checkout/internal/pricing"
)

// Row is one product line of the table.
type Row struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Available    int    `json:"availableCount"`
	Price        string `json:"price"`
	Quantity     int    `json:"orderedQuantity"`
	LineTotal    string `json:"total"`
	CanIncrement bool   `json:"canIncrement"`
	CanDecrement bool   `json:"canDecrement"`
}

// Page is everything the checkout screen shows.
type Page struct {
	Status          string  `json:"status"`
	Loading         bool    `json:"loading"`
	ShowTable       bool    `json:"showTable"`
	Error           string  `json:"error,omitempty"`
	Rows            []Row   `json:"rows"`
	DiscountApplied bool    `json:"discountApplied"`
	Discount        string  `json:"discount"`
	Total           string  `json:"total"`
	Payable         float64 `json:"-"`
}

// RowOf builds the row for one product.
func RowOf(p model.Product) Row {
	return Row{
		ID:           p.ID,
		Name:         p.Name,
		Available:    p.AvailableCount,
		Price:        pricing.FormatPrice(p.Price),
		Quantity:     p.OrderedQuantity,
		LineTotal:    pricing.FormatMoney(pricing.LineTotal(p)),
		CanIncrement: p.CanIncrement(),
		CanDecrement: p.CanDecrement(),
	}
}

// Build derives the page from a checkout state.
func Build(st checkout.State) Page {
	s := pricing.Summarize(st.Products)
	pg := Page{
		Status:          st.Status.String(),
		Loading:         st.Status == checkout.StatusPending,
		ShowTable:       st.Status == checkout.StatusLoaded,
		Rows:            make([]Row, 0, len(st.Products)),
		DiscountApplied: s.DiscountApplied,
		Discount:        pricing.FormatMoney(s.Discount),
		Total:           pricing.FormatMoney(s.Payable),
	}
	pg.Payable, _ = s.Payable.Float64()
	if st.Status == checkout.StatusFailed && st.Err != nil {
		pg.Error = st.Err.Error()
	}
	if pg.ShowTable {
		for _, p := range st.Products {
			pg.Rows = append(pg.Rows, RowOf(p))
		}
	}
	return pg
}
