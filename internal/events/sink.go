package events

import (
	"context"
	"log/slog"

	"github.com/fairyhunter13/checkout/internal/obs"
)

// LogSink writes events to obs.Logger and, when Metrics is set, counts them.
type LogSink struct {
	Metrics *obs.Metrics
}

// Handle implements Sink.
func (s LogSink) Handle(ev Event) {
	if s.Metrics != nil {
		s.Metrics.Events.WithLabelValues(string(ev.Kind)).Inc()
		if ev.Kind == KindRendered {
			s.Metrics.OrderPayable.Observe(ev.Payable)
		}
	}
	attrs := []any{
		"sequence", ev.Sequence,
		"session", ev.Session,
		"at", ev.At,
	}
	switch ev.Kind {
	case KindLoadFailed:
		obs.Logger.Error("products_load_failed", append(attrs, "error", ev.Err)...)
	case KindQuantityRejected:
		obs.Logger.Warn("quantity_rejected", append(attrs, "product_id", ev.ProductID, "quantity", ev.Quantity, "error", ev.Err)...)
	case KindQuantityChanged:
		obs.Logger.Info("quantity_changed", append(attrs, "product_id", ev.ProductID, "quantity", ev.Quantity)...)
	case KindLoadSucceeded:
		obs.Logger.Info("products_loaded", append(attrs, "count", ev.Count)...)
	default:
		obs.Logger.Log(context.Background(), slog.LevelDebug, string(ev.Kind), append(attrs, "count", ev.Count, "payable", ev.Payable)...)
	}
}

// MultiSink fans each event out to several sinks in order.
type MultiSink []Sink

// Handle implements Sink.
func (m MultiSink) Handle(ev Event) {
	for _, s := range m {
		s.Handle(ev)
	}
}
