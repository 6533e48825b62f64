// Package model defines domain types used by the service.
package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidProduct is returned by Validate for records that fail product validation.
var ErrInvalidProduct = errors.New("invalid product")

// Product is one catalog entry together with the quantity the user has ordered.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	AvailableCount  int             `json:"availableCount"`
	Price           decimal.Decimal `json:"price"`
	OrderedQuantity int             `json:"orderedQuantity"`
}

// Validate checks 0 <= OrderedQuantity <= AvailableCount and the non-negative fields.
func (p Product) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	case p.AvailableCount < 0:
		return fmt.Errorf("%w: %s: availableCount must be >= 0", ErrInvalidProduct, p.ID)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: %s: price must be >= 0", ErrInvalidProduct, p.ID)
	case p.OrderedQuantity < 0:
		return fmt.Errorf("%w: %s: orderedQuantity must be >= 0", ErrInvalidProduct, p.ID)
	case p.OrderedQuantity > p.AvailableCount:
		return fmt.Errorf("%w: %s: orderedQuantity exceeds availableCount", ErrInvalidProduct, p.ID)
	}
	return nil
}

// CanIncrement reports whether one more unit may be ordered.
func (p Product) CanIncrement() bool { return p.OrderedQuantity < p.AvailableCount }

// CanDecrement reports whether one unit may be removed.
func (p Product) CanDecrement() bool { return p.OrderedQuantity > 0 }

// ValidateList validates every product and rejects repeated ids.
func ValidateList(products []Product) error {
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
