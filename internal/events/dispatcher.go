package events

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/checkout/internal/config"
	"github.com/fairyhunter13/checkout/internal/obs"
)

// Sink consumes events on a worker goroutine.
type Sink interface {
	Handle(ev Event)
}

// Dispatcher coordinates workers draining the queue into a Sink and scales them with the backlog.
type Dispatcher struct {
	cfg    config.Config
	q      *Queue
	sink   Sink
	seq    Sequencer
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
	wg            sync.WaitGroup
}

// NewDispatcher constructs a Dispatcher with the given config, queue, and sink.
func NewDispatcher(cfg config.Config, q *Queue, sink Sink) *Dispatcher {
	return &Dispatcher{cfg: cfg, q: q, sink: sink}
}

// Start begins processing and autoscaling in the background.
func (d *Dispatcher) Start(parent context.Context) {
	d.ctx, d.cancel = context.WithCancel(parent)
	d.goJoined(func() { d.q.pump(d.ctx, d.cfg.QueueHighWatermark) })
	d.addWorkers(max(d.cfg.InitialWorkerCount, 1))
	if d.cfg.ScaleInterval > 0 {
		d.goJoined(d.scaler)
	}
}

// goJoined runs fn on a goroutine that Stop waits for.
func (d *Dispatcher) goJoined(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

// Stop cancels the pump, the scaler and every worker, and returns once they have exited.
// Events still queued are dropped; call DrainUntil first to deliver them.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.mu.Lock()
	for _, c := range d.workerCancels {
		c()
	}
	d.workerCancels = nil
	d.mu.Unlock()
	d.wg.Wait()
}

// scaler adjusts worker count based on backlog and configuration.
func (d *Dispatcher) scaler() {
	t := time.NewTicker(d.cfg.ScaleInterval)
	defer t.Stop()
	idleTicks := 0
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-t.C:
			backlog := d.q.BacklogSize()
			wc := d.WorkerCount()
			if backlog > wc*d.cfg.ScaleUpBacklogPerWorker && wc < d.cfg.WorkerMax {
				d.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog == 0 {
				idleTicks++
				if idleTicks >= d.cfg.ScaleDownIdleTicks && wc > d.cfg.WorkerMin {
					d.removeWorkers(1)
					idleTicks = 0
				}
			} else {
				idleTicks = 0
			}
		}
	}
}

func (d *Dispatcher) addWorkers(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(d.ctx)
		d.workerCancels = append(d.workerCancels, cancel)
		d.goJoined(func() { d.worker(wctx) })
	}
	obs.Logger.Debug("event_workers_scaled", "worker_count", len(d.workerCancels))
}

func (d *Dispatcher) removeWorkers(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n > len(d.workerCancels) {
		n = len(d.workerCancels)
	}
	for i := 0; i < n; i++ {
		c := d.workerCancels[len(d.workerCancels)-1]
		d.workerCancels = d.workerCancels[:len(d.workerCancels)-1]
		c()
	}
	obs.Logger.Debug("event_workers_scaled", "worker_count", len(d.workerCancels))
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.q.Out():
			d.sink.Handle(ev)
			d.q.MarkProcessed()
		}
	}
}

// Publish stamps the event with a sequence number and time and queues it.
func (d *Dispatcher) Publish(ev Event) bool {
	ev.Sequence = d.seq.Next()
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return d.q.Enqueue(ev)
}

// BacklogSize returns pending items in the queue.
func (d *Dispatcher) BacklogSize() int { return d.q.BacklogSize() }

// QueueDepth returns backlog plus buffered output items.
func (d *Dispatcher) QueueDepth() int { return d.q.Depth() }

// WorkerCount returns the current number of workers.
func (d *Dispatcher) WorkerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workerCancels)
}

// Dropped returns how many events were refused after intake closed.
func (d *Dispatcher) Dropped() uint64 { return d.q.Dropped() }

// IsShuttingDown reports whether new events are rejected.
func (d *Dispatcher) IsShuttingDown() bool { return d.q.IsShuttingDown() }

// CloseIntake disallows future events.
func (d *Dispatcher) CloseIntake() { d.q.CloseIntake() }

// QueueMetrics exposes the underlying queue metrics.
func (d *Dispatcher) QueueMetrics() (enq, proc uint64, backlog, depth int) {
	return d.q.Metrics()
}

// DrainUntil blocks until the queue is fully drained or ctx is done.
func (d *Dispatcher) DrainUntil(ctx context.Context) bool {
	for {
		enq, proc, backlog, depth := d.q.Metrics()
		if backlog == 0 && depth == 0 && enq == proc {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Shutdown refuses new events, delivers what is queued for up to timeout, then stops.
// It reports whether everything queued was delivered.
func (d *Dispatcher) Shutdown(timeout time.Duration) bool {
	d.CloseIntake()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	drained := d.DrainUntil(ctx)
	d.Stop()
	return drained
}
