package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/checkout/internal/obs"
)

// flushInterval bounds how long a published event can sit in the pending list
// when a wake-up signal was coalesced away.
const flushInterval = 50 * time.Millisecond

// Queue sits between checkout publishers and dispatcher workers.
// Publishing appends to an unbounded pending list and never blocks the request
// or load that produced the event; a pump goroutine moves pending events into
// the bounded channel the workers read.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	wake    chan struct{}
	out     chan Event
	closed  atomic.Bool

	published atomic.Uint64
	handled   atomic.Uint64
	dropped   atomic.Uint64
}

// NewQueue returns a Queue whose worker channel holds up to buffer events.
func NewQueue(buffer int) *Queue {
	if buffer <= 0 {
		buffer = 64
	}
	return &Queue{
		wake: make(chan struct{}, 1),
		out:  make(chan Event, buffer),
	}
}

// Start runs the pump until ctx is done. A pending list longer than
// highWatermark is reported on every pass; zero disables the warning.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.pump(ctx, highWatermark)
}

func (q *Queue) pump(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		if n := q.flush(); highWatermark > 0 && n > highWatermark {
			obs.Logger.Warn("event_backlog_high", "backlog_size", n, "high_watermark", highWatermark)
		}
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-ticker.C:
		}
	}
}

// flush hands pending events to workers in publish order and returns how many remain.
func (q *Queue) flush() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for n < len(q.pending) && len(q.out) < cap(q.out) {
		q.out <- q.pending[n]
		n++
	}
	clear(q.pending[:n])
	q.pending = q.pending[n:]
	return len(q.pending)
}

// Enqueue adds ev to the pending list. After CloseIntake it drops ev and returns false.
func (q *Queue) Enqueue(ev Event) bool {
	if q.closed.Load() {
		q.dropped.Add(1)
		return false
	}
	q.published.Add(1)
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Out is the channel workers receive from.
func (q *Queue) Out() <-chan Event { return q.out }

// BacklogSize is the number of events not yet handed to workers.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Depth counts pending events plus those buffered for workers.
func (q *Queue) Depth() int { return q.BacklogSize() + len(q.out) }

// MarkProcessed records that a worker finished with one event.
func (q *Queue) MarkProcessed() { q.handled.Add(1) }

// Dropped is the number of events refused after CloseIntake.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Metrics reports publish and handle counters alongside the current sizes.
func (q *Queue) Metrics() (enq, proc uint64, backlog, depth int) {
	return q.published.Load(), q.handled.Load(), q.BacklogSize(), q.Depth()
}

// CloseIntake refuses further events. Already queued events are still delivered.
func (q *Queue) CloseIntake() { q.closed.Store(true) }

// IsShuttingDown reports whether CloseIntake was called.
func (q *Queue) IsShuttingDown() bool { return q.closed.Load() }
