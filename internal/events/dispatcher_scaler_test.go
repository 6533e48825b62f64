package events

import (
	"context"
	"testing"
	"time"

	"github.com/fairyhunter13/checkout/internal/config"
)

type slowSink struct{}

func (slowSink) Handle(Event) { time.Sleep(2 * time.Millisecond) }

func TestDispatcherScaler_UpAndDown(t *testing.T) {
	// Configure aggressive scaling
	t.Setenv("EVENT_WORKER_MIN", "1")
	t.Setenv("EVENT_WORKER_MAX", "3")
	t.Setenv("EVENT_WORKER_COUNT", "1")
	t.Setenv("EVENT_SCALE_INTERVAL_MS", "50")
	t.Setenv("EVENT_SCALE_UP_BACKLOG_PER_WORKER", "1")
	t.Setenv("EVENT_SCALE_DOWN_IDLE_TICKS", "1")

	cfg := config.Load()
	d := NewDispatcher(cfg, NewQueue(8), slowSink{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	// Enqueue backlog to trigger scale up
	for i := 0; i < 200; i++ {
		_ = d.Publish(Event{Kind: KindQuantityChanged, Quantity: i})
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if wc := d.WorkerCount(); wc > 1 {
			break
		}
		time.Sleep(25 * time.Millisecond)
	}
	if wc := d.WorkerCount(); wc <= 1 {
		t.Fatalf("expected scale up, worker_count=%d", wc)
	}

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDrain()
	if ok := d.DrainUntil(ctxDrain); !ok {
		t.Fatalf("drain timeout")
	}
	// Allow scaler to tick and scale down to min
	deadline2 := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline2) {
		if wc := d.WorkerCount(); wc == cfg.WorkerMin {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if wc := d.WorkerCount(); wc != cfg.WorkerMin {
		t.Fatalf("expected scale down to %d, got %d", cfg.WorkerMin, wc)
	}
}
