// Package main runs the checkout in a terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fairyhunter13/checkout/internal/catalog"
	"github.com/fairyhunter13/checkout/internal/checkout"
	"github.com/fairyhunter13/checkout/internal/config"
	"github.com/fairyhunter13/checkout/internal/events"
	"github.com/fairyhunter13/checkout/internal/obs"
	"github.com/fairyhunter13/checkout/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	cfg := config.Load()

	var logw io.Writer = io.Discard
	if cfg.TUILogFile != "" {
		f, err := os.OpenFile(cfg.TUILogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		defer f.Close()
		logw = f
	}
	obs.InitLoggerTo(logw, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	disp := events.NewDispatcher(cfg, events.NewQueue(64), events.LogSink{})
	disp.Start(ctx)
	defer func() {
		if !disp.Shutdown(cfg.ShutdownTimeout) {
			obs.Logger.Warn("shutdown_drain_timeout", "backlog_size", disp.BacklogSize())
		}
	}()

	co := checkout.New("tui", disp)
	p := tea.NewProgram(tui.New(ctx, co, catalog.FromConfig(cfg, nil)))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
