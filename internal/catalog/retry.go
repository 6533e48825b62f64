package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/fairyhunter13/checkout/internal/model"
)

// Retrying bounds a Source with a per-attempt timeout and a fixed number of attempts.
// The wait before attempt n+1 is n × Backoff.
type Retrying struct {
	Source   Source
	Attempts int
	Timeout  time.Duration
	Backoff  time.Duration
	// OnAttempt, when set, is called after every attempt with its 1-based number and result.
	OnAttempt func(attempt int, err error)
}

// Fetch implements Source.
func (r Retrying) Fetch(ctx context.Context) ([]model.Product, error) {
	attempts := max(r.Attempts, 1)
	var lastErr error
	for i := 1; i <= attempts; i++ {
		products, err := r.once(ctx)
		if r.OnAttempt != nil {
			r.OnAttempt(i, err)
		}
		if err == nil {
			return products, nil
		}
		lastErr = err
		if errors.Is(err, ErrInvalidCatalog) || ctx.Err() != nil || i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i) * r.Backoff):
		}
	}
	return nil, lastErr
}

func (r Retrying) once(ctx context.Context) ([]model.Product, error) {
	if r.Timeout <= 0 {
		return r.Source.Fetch(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	return r.Source.Fetch(actx)
}
