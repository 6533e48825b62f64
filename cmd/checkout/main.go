// Package main boots the checkout HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/checkout/internal/catalog"
	"github.com/fairyhunter13/checkout/internal/config"
	"github.com/fairyhunter13/checkout/internal/events"
	httpapi "github.com/fairyhunter13/checkout/internal/http"
	"github.com/fairyhunter13/checkout/internal/obs"
	"github.com/fairyhunter13/checkout/internal/session"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		obs.InitLogger("info")
		obs.Logger.Error("dotenv_load_failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting")

	metrics := obs.NewMetrics()
	disp := events.NewDispatcher(cfg, events.NewQueue(128), events.LogSink{Metrics: metrics})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	disp.Start(ctx)

	sessions := session.New()
	go sessions.RunSweeper(ctx, cfg.SessionSweepInterval, cfg.SessionIdleTimeout, func(active int) {
		metrics.Sessions.Set(float64(active))
	})

	src := catalog.FromConfig(cfg, metrics)
	app := httpapi.NewApp(ctx, cfg, sessions, disp, src, metrics)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", disp.BacklogSize(), "worker_count", disp.WorkerCount())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := disp.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	sessions.CloseAll()
	disp.Stop()
	obs.Logger.Info("service_stopped")
}
