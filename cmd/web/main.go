package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"machoda.com/macho-web/internal/config"
	"machoda.com/macho-web/internal/httpserver"
	"machoda.com/macho-web/internal/i18n"
	"machoda.com/macho-web/internal/menu"
	"machoda.com/macho-web/internal/middleware"
	"machoda.com/macho-web/internal/observability"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Telemetry.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web").With(
		zap.String("service", cfg.Telemetry.ServiceName),
		zap.String("env", cfg.Telemetry.Environment),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingOptions{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Telemetry.Environment,
		Endpoint:       cfg.Telemetry.OTelEndpoint,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Fatal("failed to initialise tracing", zap.Error(err))
	}

	srv, err := buildServer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()
	logger.Info("server listening",
		zap.String("addr", srv.Addr),
		zap.Bool("dev", cfg.Server.Dev),
		zap.Bool("tracing", cfg.Telemetry.OTelEndpoint != ""),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", zap.Error(err))
	}
}

// buildServer loads content and wires the HTTP stack from configuration.
func buildServer(cfg config.Config, logger *zap.Logger) (*http.Server, error) {
	table, err := loadTable(cfg.Content.ProgramsFile)
	if err != nil {
		return nil, err
	}
	if pending := table.Pending(); len(pending) > 0 {
		logger.Warn("program table has selectable combinations without a program", zap.Int("count", len(pending)))
	}

	bundle, err := i18n.Default(cfg.Site.DefaultLocale, cfg.Site.Locales)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	return httpserver.New(httpserver.Config{
		Address: cfg.Server.Addr(),
		Logger:  logger,
		Table:   table,
		Bundle:  bundle,
		Sessions: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			Secret:     []byte(cfg.Session.Secret),
			Secure:     cfg.Session.Secure,
			TTL:        cfg.Session.TTL,
		},
		Canonical: middleware.CanonicalOptions{
			Host:           cfg.Site.CanonicalHost,
			LocalSuffixes:  cfg.Site.LocalHostSuffixes,
			StripParams:    cfg.Site.StripParams,
			ExemptPrefixes: []string{"/api/", "/assets/", "/healthz"},
		},
		CanonicalRedirects: cfg.Site.CanonicalRedirects,
		TemplatesDir:       cfg.Content.TemplatesDir,
		DevMode:            cfg.Server.Dev,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
	})
}

func loadTable(path string) (*menu.Table, error) {
	if path == "" {
		return menu.DefaultTable()
	}
	return menu.LoadTableFile(path)
}
