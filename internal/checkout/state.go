package checkout

import "github.com/fairyhunter13/checkout/internal/model"

// Status is the load phase of a checkout.
type Status int

const (
	StatusPending Status = iota
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a tagged value: Products is meaningful only when Loaded, Err only when Failed.
// A loaded checkout with zero products and a failed one are therefore distinct.
type State struct {
	Status   Status
	Products []model.Product
	Err      error
}

func (s State) clone() State {
	s.Products = append([]model.Product(nil), s.Products...)
	return s
}
