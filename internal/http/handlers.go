package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fairyhunter13/checkout/internal/checkout"
	"github.com/fairyhunter13/checkout/internal/config"
	"github.com/fairyhunter13/checkout/internal/events"
	httpopenapi "github.com/fairyhunter13/checkout/internal/http/openapi"
	"github.com/fairyhunter13/checkout/internal/model"
	"github.com/fairyhunter13/checkout/internal/obs"
	"github.com/fairyhunter13/checkout/internal/session"
	"github.com/fairyhunter13/checkout/internal/view"
)

const sessionCookie = "checkout_session"

// App holds the dependencies shared by all handlers.
type App struct {
	Cfg      config.Config
	Sessions *session.Store
	Events   *events.Dispatcher
	Catalog  checkout.Fetcher
	Metrics  *obs.Metrics

	// loads outlive the request that started them, so they hang off this context
	ctx     context.Context
	closing atomic.Bool
	started time.Time
}

// NewApp wires an App. Catalog loads run on ctx so they outlive the request that started them.
func NewApp(ctx context.Context, cfg config.Config, sessions *session.Store, disp *events.Dispatcher, src checkout.Fetcher, m *obs.Metrics) *App {
	return &App{
		Cfg:      cfg,
		Sessions: sessions,
		Events:   disp,
		Catalog:  src,
		Metrics:  m,
		ctx:      ctx,
		started:  time.Now(),
	}
}

// StartShutdown makes mutating endpoints answer 503 and closes event intake.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	a.Events.CloseIntake()
}

type adjustFunc func(co *checkout.Checkout, id string) (model.Product, error)

var (
	increment adjustFunc = (*checkout.Checkout).Increment
	decrement adjustFunc = (*checkout.Checkout).Decrement
)

// checkoutFor returns the caller's checkout, creating a session and starting its catalog load
// when the request carries no known session cookie.
func (a *App) checkoutFor(w http.ResponseWriter, r *http.Request) *checkout.Checkout {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if co, ok := a.Sessions.Get(c.Value); ok {
			return co
		}
	}
	id := uuid.NewString()
	co := checkout.New(id, a.Events)
	a.Sessions.Put(id, co)
	a.Metrics.Sessions.Set(float64(a.Sessions.Len()))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if err := co.Start(a.ctx, a.Catalog); err != nil {
		obs.Logger.Error("checkout_start_failed", "session", id, "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	return co
}

// rendered publishes the render diagnostic after the response body has been written.
func (a *App) rendered(co *checkout.Checkout, pg view.Page) {
	a.Events.Publish(events.Event{
		Kind:    events.KindRendered,
		Session: co.Session(),
		Count:   len(pg.Rows),
		Payable: pg.Payable,
	})
}

func productID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if u, err := url.PathUnescape(id); err == nil {
		return u
	}
	return id
}

func (a *App) pageHandler(w http.ResponseWriter, r *http.Request) {
	co := a.checkoutFor(w, r)
	pg := view.Build(co.Snapshot())
	var buf bytes.Buffer
	if err := view.HTML(&buf, pg); err != nil {
		obs.Logger.Error("render_failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		WriteJSONError(w, http.StatusInternalServerError, "render_failed", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
	a.rendered(co, pg)
}

func (a *App) formAdjustHandler(fn adjustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.closing.Load() {
			WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
			return
		}
		co := a.checkoutFor(w, r)
		if _, err := fn(co, productID(r)); errors.Is(err, checkout.ErrUnknownProduct) {
			WriteJSONError(w, http.StatusNotFound, "unknown_product", err.Error())
			return
		}
		// out-of-range and not-yet-loaded clicks leave the state as it was; the page shows it
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (a *App) checkoutJSONHandler(w http.ResponseWriter, r *http.Request) {
	co := a.checkoutFor(w, r)
	pg := view.Build(co.Snapshot())
	writeJSON(w, http.StatusOK, pg)
	a.rendered(co, pg)
}

func (a *App) apiAdjustHandler(fn adjustFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.closing.Load() {
			WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
			return
		}
		co := a.checkoutFor(w, r)
		if _, err := fn(co, productID(r)); err != nil {
			switch {
			case errors.Is(err, checkout.ErrUnknownProduct):
				WriteJSONError(w, http.StatusNotFound, "unknown_product", err.Error())
			case errors.Is(err, checkout.ErrNotLoaded):
				WriteJSONError(w, http.StatusConflict, "not_loaded", err.Error())
			case errors.Is(err, checkout.ErrAboveAvailable), errors.Is(err, checkout.ErrBelowZero):
				WriteJSONError(w, http.StatusConflict, "quantity_out_of_range", err.Error())
			default:
				WriteJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}
		pg := view.Build(co.Snapshot())
		writeJSON(w, http.StatusOK, pg)
		a.rendered(co, pg)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	enq, proc, backlog, depth := a.Events.QueueMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions_active":  a.Sessions.Len(),
		"events_enqueued":  enq,
		"events_processed": proc,
		"events_dropped":   a.Events.Dropped(),
		"backlog_size":     backlog,
		"queue_depth":      depth,
		"worker_count":     a.Events.WorkerCount(),
		"uptime_sec":       time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Checkout API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
