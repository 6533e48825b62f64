package catalog

import (
	"net/http"

	"github.com/fairyhunter13/checkout/internal/config"
	"github.com/fairyhunter13/checkout/internal/obs"
)

// FromConfig picks the catalog source (URL, then file, then the embedded demo)
// and wraps it with the configured timeout and retry policy. m may be nil.
func FromConfig(cfg config.Config, m *obs.Metrics) Source {
	var src Source
	switch {
	case cfg.CatalogURL != "":
		src = HTTPSource{URL: cfg.CatalogURL, Client: &http.Client{}}
	case cfg.CatalogFile != "":
		src = FileSource{Path: cfg.CatalogFile}
	default:
		src = Embedded()
	}
	return Retrying{
		Source:   src,
		Attempts: cfg.FetchMaxAttempts,
		Timeout:  cfg.FetchTimeout,
		Backoff:  cfg.FetchBackoff,
		OnAttempt: func(attempt int, err error) {
			outcome := "success"
			if err != nil {
				outcome = "error"
				obs.Logger.Warn("catalog_fetch_attempt_failed", "attempt", attempt, "error", err)
			}
			if m != nil {
				m.FetchAttempts.WithLabelValues(outcome).Inc()
			}
		},
	}
}
