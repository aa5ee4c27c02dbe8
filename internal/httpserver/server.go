// Package httpserver assembles the router, middleware stack and http.Server.
package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"machoda.com/macho-web/internal/handlers"
	"machoda.com/macho-web/internal/httpx"
	"machoda.com/macho-web/internal/i18n"
	"machoda.com/macho-web/internal/menu"
	custommw "machoda.com/macho-web/internal/middleware"
	"machoda.com/macho-web/internal/observability"
	"machoda.com/macho-web/internal/richtext"
)

// Config holds runtime options for the site server.
type Config struct {
	Address string
	Logger  *zap.Logger
	Tracer  trace.TracerProvider

	Table  *menu.Table
	Bundle *i18n.Bundle

	Sessions           custommw.SessionOptions
	Canonical          custommw.CanonicalOptions
	CanonicalRedirects bool

	TemplatesDir string
	DevMode      bool

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// New constructs the HTTP server.
func New(cfg Config) (*http.Server, error) {
	router, err := NewRouter(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadTimeout:       durationOr(cfg.ReadTimeout, 15*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      durationOr(cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       durationOr(cfg.IdleTimeout, 60*time.Second),
	}, nil
}

// NewRouter builds the handler tree: health and assets first, the JSON API, and the
// pages behind canonical-host, session and locale middleware.
func NewRouter(cfg Config) (http.Handler, error) {
	if cfg.Table == nil {
		return nil, errors.New("httpserver: program table is required")
	}
	if cfg.Bundle == nil {
		return nil, errors.New("httpserver: i18n bundle is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rich := richtext.New()
	views, err := handlers.NewViews(cfg.Bundle, rich, cfg.TemplatesDir, cfg.DevMode)
	if err != nil {
		return nil, err
	}
	h := handlers.New(views, cfg.Table, cfg.Bundle, rich)
	sessions := custommw.NewSessions(cfg.Sessions)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLogger(logger))
	if cfg.Tracer != nil {
		router.Use(observability.TracingWith(cfg.Tracer))
	} else {
		router.Use(observability.Tracing)
	}
	router.Use(observability.Recovery(logger))
	router.Use(observability.RequestLogger("/healthz", "/assets/"))
	router.Use(chimw.Compress(5))
	router.Use(chimw.Timeout(durationOr(cfg.RequestTimeout, 30*time.Second)))

	router.Get("/healthz", handlers.Healthz)
	router.Handle("/assets/*", http.StripPrefix("/assets", custommw.Assets(handlers.StaticFS())))

	router.Route("/api", func(r chi.Router) {
		r.Get("/menu/programs", h.Programs)
		r.Post("/menu/wizard", h.Wizard)
		r.Get("/intake", h.IntakeAPI)
		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiMethodNotAllowed)
	})

	pageStack := []func(http.Handler) http.Handler{custommw.HTMX, sessions.Middleware, custommw.Locale(cfg.Bundle)}
	if cfg.CanonicalRedirects {
		pageStack = append([]func(http.Handler) http.Handler{custommw.Canonical(cfg.Canonical)}, pageStack...)
	}
	router.Group(func(r chi.Router) {
		r.Use(pageStack...)
		r.Get("/", h.Home)
		r.Get("/menu", h.Menu)
		r.Get("/intake-calculator", h.Intake)
	})

	notFound := chi.Chain(pageStack...).HandlerFunc(h.NotFound)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiNotFound(w, r)
			return
		}
		notFound.ServeHTTP(w, r)
	})
	return router, nil
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError("not_found", "resource not found", http.StatusNotFound))
}

func apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError("method_not_allowed", "method not allowed", http.StatusMethodNotAllowed))
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
