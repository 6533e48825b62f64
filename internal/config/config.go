// Package config provides runtime configuration values for the service.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration knobs for the HTTP server, catalog fetch, sessions and event workers.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	CatalogURL       string
	CatalogFile      string
	FetchTimeout     time.Duration
	FetchMaxAttempts int
	FetchBackoff     time.Duration

	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	InitialWorkerCount      int
	WorkerMin               int
	WorkerMax               int
	ScaleInterval           time.Duration
	ScaleUpBacklogPerWorker int
	ScaleDownIdleTicks      int
	QueueHighWatermark      int

	TUILogFile string
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// LoadDotenv reads KEY=VALUE files into the process environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load collects configuration from environment with defaults.
func Load() Config {
	minWorkers := atoienv("EVENT_WORKER_MIN", 1)
	maxWorkers := atoienv("EVENT_WORKER_MAX", 4)
	initialWorkers := atoienv("EVENT_WORKER_COUNT", minWorkers)
	attempts := atoienv("FETCH_MAX_ATTEMPTS", 3)
	if attempts < 1 {
		attempts = 1
	}
	return Config{
		HTTPAddr:                getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:         durenvs("SHUTDOWN_TIMEOUT", 15),
		LogLevel:                strings.ToLower(getenv("LOG_LEVEL", "info")),
		CatalogURL:              getenv("CATALOG_URL", ""),
		CatalogFile:             getenv("CATALOG_FILE", ""),
		FetchTimeout:            durenvms("FETCH_TIMEOUT_MS", 5000),
		FetchMaxAttempts:        attempts,
		FetchBackoff:            durenvms("FETCH_BACKOFF_MS", 200),
		SessionIdleTimeout:      durenvs("SESSION_IDLE_TIMEOUT", 1800),
		SessionSweepInterval:    durenvs("SESSION_SWEEP_INTERVAL", 60),
		InitialWorkerCount:      initialWorkers,
		WorkerMin:               minWorkers,
		WorkerMax:               maxWorkers,
		ScaleInterval:           durenvms("EVENT_SCALE_INTERVAL_MS", 500),
		ScaleUpBacklogPerWorker: atoienv("EVENT_SCALE_UP_BACKLOG_PER_WORKER", 100),
		ScaleDownIdleTicks:      atoienv("EVENT_SCALE_DOWN_IDLE_TICKS", 6),
		QueueHighWatermark:      atoienv("EVENT_QUEUE_HIGH_WATERMARK", 5000),
		TUILogFile:              getenv("TUI_LOG_FILE", ""),
	}
}
