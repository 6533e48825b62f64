package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/checkout/internal/model"
)

//go:embed default.yaml
var defaultCatalog []byte

// FileSource reads a YAML (or JSON, which YAML accepts) list of products from Path.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Parse(b)
}

// Parse decodes a YAML or JSON product list.
func Parse(b []byte) ([]model.Product, error) {
	var records []record
	if err := yaml.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	return convert(records)
}

// Embedded serves the demo catalog compiled into the binary.
func Embedded() Source {
	return SourceFunc(func(ctx context.Context) ([]model.Product, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Parse(defaultCatalog)
	})
}
