// Package testutil starts the site stack for handler and integration tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"machoda.com/macho-web/internal/httpserver"
	"machoda.com/macho-web/internal/i18n"
	"machoda.com/macho-web/internal/menu"
	"machoda.com/macho-web/internal/middleware"
)

// SessionSecret is the signing secret used by NewServer.
const SessionSecret = "test-session-secret-0123456789abcdef"

// ServerOption customises the server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithTable replaces the embedded program table.
func WithTable(table *menu.Table) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Table = table
	}
}

// WithLogger routes request logs to logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Logger = logger
	}
}

// WithCanonicalRedirects enables canonical-host redirects for host.
func WithCanonicalRedirects(host string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.CanonicalRedirects = true
		cfg.Canonical.Host = host
	}
}

// Config returns the configuration NewServer starts from.
func Config(t testing.TB) httpserver.Config {
	t.Helper()

	table, err := menu.DefaultTable()
	require.NoError(t, err)
	bundle, err := i18n.Default("ja", []string{"ja", "en"})
	require.NoError(t, err)
	return httpserver.Config{
		Table:  table,
		Bundle: bundle,
		Sessions: middleware.SessionOptions{
			CookieName: "macho_session",
			Secret:     []byte(SessionSecret),
		},
		Canonical: middleware.CanonicalOptions{
			Host:           "www.machoda.com",
			ExemptPrefixes: []string{"/api/", "/assets/", "/healthz"},
		},
	}
}

// NewHandler builds the router with test defaults.
func NewHandler(t testing.TB, opts ...ServerOption) http.Handler {
	t.Helper()

	cfg := Config(t)
	for _, opt := range opts {
		opt(&cfg)
	}
	h, err := httpserver.NewRouter(cfg)
	require.NoError(t, err)
	return h
}

// NewServer runs the site stack on an httptest server closed with the test.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(NewHandler(t, opts...))
	t.Cleanup(ts.Close)
	return ts
}

// NoRedirectClient returns a client that reports redirects instead of following them.
func NoRedirectClient(ts *httptest.Server) *http.Client {
	c := *ts.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}
