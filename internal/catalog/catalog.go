// Package catalog fetches the product list a checkout starts from.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/checkout/internal/model"
)

var (
	// ErrUnavailable marks transport failures and non-2xx answers. Retrying retries these.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrInvalidCatalog marks payloads that decode but fail product validation. Not retried.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// Source returns the ordered list of products.
type Source interface {
	Fetch(ctx context.Context) ([]model.Product, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]model.Product, error)

// Fetch calls f(ctx).
func (f SourceFunc) Fetch(ctx context.Context) ([]model.Product, error) { return f(ctx) }

// Static serves a fixed list. Each Fetch returns a fresh copy.
type Static []model.Product

// Fetch implements Source.
func (s Static) Fetch(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]model.Product(nil), s...), nil
}

// scalar accepts a JSON or YAML string or number and keeps its literal text,
// so ids may be 7 or "7" and prices keep every digit.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = scalar(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = scalar(n.String())
	return nil
}

func (s *scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar", n.Line)
	}
	*s = scalar(n.Value)
	return nil
}

// record is the wire shape of one catalog entry.
type record struct {
	ID              scalar `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	AvailableCount  int    `json:"availableCount" yaml:"availableCount"`
	Price           scalar `json:"price" yaml:"price"`
	OrderedQuantity int    `json:"orderedQuantity" yaml:"orderedQuantity"`
}

func (r record) product() (model.Product, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(string(r.Price)))
	if err != nil {
		return model.Product{}, fmt.Errorf("%w: product %q: price %q: %v", ErrInvalidCatalog, r.ID, r.Price, err)
	}
	return model.Product{
		ID:              strings.TrimSpace(string(r.ID)),
		Name:            r.Name,
		AvailableCount:  r.AvailableCount,
		Price:           price,
		OrderedQuantity: r.OrderedQuantity,
	}, nil
}

// convert turns records into products, keeping their order, and validates the list.
func convert(records []record) ([]model.Product, error) {
	out := make([]model.Product, 0, len(records))
	for _, r := range records {
		p, err := r.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := model.ValidateList(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return out, nil
}
