// Package events carries checkout diagnostics off the request and render paths.
//
// Checkout operations publish Events; a Dispatcher queues them and a pool of workers
// hands them to a Sink, which by default logs them and counts them in Prometheus.
package events

import "time"

// Kind names what happened.
type Kind string

const (
	KindLoadStarted      Kind = "load_started"
	KindLoadSucceeded    Kind = "load_succeeded"
	KindLoadFailed       Kind = "load_failed"
	KindQuantityChanged  Kind = "quantity_changed"
	KindQuantityRejected Kind = "quantity_rejected"
	KindRendered         Kind = "checkout_rendered"
)

// Event is one diagnostic record.
type Event struct {
	Kind      Kind
	Session   string
	ProductID string
	Quantity  int
	Count     int
	Payable   float64
	Err       string
	At        time.Time
	Sequence  uint64
}

// Publisher accepts events without blocking. It returns false when the event was dropped.
type Publisher interface {
	Publish(ev Event) bool
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event) bool

// Publish calls f(ev).
func (f PublisherFunc) Publish(ev Event) bool { return f(ev) }

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(Event) bool { return false })
