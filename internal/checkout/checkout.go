// Package checkout holds the state of one checkout: the product list fetched once
// from a catalog and the quantities the user orders.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/checkout/internal/events"
	"github.com/fairyhunter13/checkout/internal/model"
	"github.com/fairyhunter13/checkout/internal/pricing"
)

var (
	ErrAlreadyStarted = errors.New("catalog load already started")
	ErrNotLoaded      = errors.New("products not loaded")
	ErrUnknownProduct = errors.New("unknown product")
	ErrAboveAvailable = errors.New("quantity would exceed available count")
	ErrBelowZero      = errors.New("quantity would drop below zero")
	ErrClosed         = errors.New("checkout closed")
)

// Fetcher supplies the product list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Product, error)
}

// Checkout is safe for concurrent use. Every update replaces the affected product
// with a modified copy under the lock, so readers never see a half-applied change.
type Checkout struct {
	session string
	pub     events.Publisher

	mu      sync.Mutex
	state   State
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a pending checkout. Events go to pub; a nil pub discards them.
func New(session string, pub events.Publisher) *Checkout {
	if pub == nil {
		pub = events.Discard
	}
	return &Checkout{session: session, pub: pub, done: make(chan struct{})}
}

// Session returns the identifier events are tagged with.
func (c *Checkout) Session() string { return c.session }

// Start launches the single catalog fetch in the background and returns immediately.
func (c *Checkout) Start(ctx context.Context, src Fetcher) error {
	lctx, err := c.begin(ctx)
	if err != nil {
		return err
	}
	go c.run(lctx, src)
	return nil
}

// Load performs the single catalog fetch and blocks until it resolves.
// The returned error is the fetch error, also recorded in the Failed state.
func (c *Checkout) Load(ctx context.Context, src Fetcher) error {
	lctx, err := c.begin(ctx)
	if err != nil {
		return err
	}
	return c.run(lctx, src)
}

func (c *Checkout) begin(ctx context.Context) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.started {
		return nil, ErrAlreadyStarted
	}
	c.started = true
	lctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	return lctx, nil
}

func (c *Checkout) run(ctx context.Context, src Fetcher) error {
	defer close(c.done)
	c.pub.Publish(events.Event{Kind: events.KindLoadStarted, Session: c.session})
	products, err := src.Fetch(ctx)
	if err == nil {
		err = model.ValidateList(products)
	}

	c.mu.Lock()
	if err != nil {
		c.state = State{Status: StatusFailed, Err: err}
	} else {
		c.state = State{Status: StatusLoaded, Products: append([]model.Product(nil), products...)}
	}
	c.mu.Unlock()

	if err != nil {
		c.pub.Publish(events.Event{Kind: events.KindLoadFailed, Session: c.session, Err: err.Error()})
		return err
	}
	c.pub.Publish(events.Event{Kind: events.KindLoadSucceeded, Session: c.session, Count: len(products)})
	return nil
}

// Wait blocks until a started load resolves or ctx is done.
func (c *Checkout) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels a pending fetch. The checkout keeps its last state.
func (c *Checkout) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
}

// Increment orders one more unit of the product with the given id.
func (c *Checkout) Increment(id string) (model.Product, error) {
	return c.adjust(id, +1)
}

// Decrement removes one unit of the product with the given id.
func (c *Checkout) Decrement(id string) (model.Product, error) {
	return c.adjust(id, -1)
}

func (c *Checkout) adjust(id string, delta int) (model.Product, error) {
	p, err := c.apply(id, delta)
	if err != nil {
		c.pub.Publish(events.Event{
			Kind: events.KindQuantityRejected, Session: c.session,
			ProductID: id, Quantity: p.OrderedQuantity, Err: err.Error(),
		})
		return p, err
	}
	c.pub.Publish(events.Event{
		Kind: events.KindQuantityChanged, Session: c.session,
		ProductID: id, Quantity: p.OrderedQuantity,
	})
	return p, nil
}

func (c *Checkout) apply(id string, delta int) (model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != StatusLoaded {
		return model.Product{}, ErrNotLoaded
	}
	for i, p := range c.state.Products {
		if p.ID != id {
			continue
		}
		next := p
		next.OrderedQuantity += delta
		switch {
		case next.OrderedQuantity > next.AvailableCount:
			return p, fmt.Errorf("%w: %s has %d available", ErrAboveAvailable, id, p.AvailableCount)
		case next.OrderedQuantity < 0:
			return p, fmt.Errorf("%w: %s", ErrBelowZero, id)
		}
		products := append([]model.Product(nil), c.state.Products...)
		products[i] = next
		c.state.Products = products
		return next, nil
	}
	return model.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
}

// Snapshot returns a copy of the current state.
func (c *Checkout) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Total is the undiscounted order total.
func (c *Checkout) Total() decimal.Decimal {
	return pricing.OrderTotal(c.Snapshot().Products)
}

// Summary is the order total with the discount applied.
func (c *Checkout) Summary() pricing.Summary {
	return pricing.Summarize(c.Snapshot().Products)
}
