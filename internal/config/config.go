// Package config loads the web server configuration from the environment.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "MACHO_WEB_"

const (
	defaultEnvFile     = ".env"
	minSecretLength    = 32
	devSessionSecret   = "macho-web-development-session-secret"
	defaultServiceName = "macho-web"
)

// Config is the typed configuration, grouped by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
	Content   ContentConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// Dev reparses templates per request and relaxes the session secret requirement.
	Dev bool `env:"DEV"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort("", s.Port)
}

// SiteConfig holds the public-facing site settings.
type SiteConfig struct {
	CanonicalHost      string   `env:"CANONICAL_HOST" envDefault:"www.machoda.com"`
	CanonicalRedirects bool     `env:"CANONICAL_REDIRECTS" envDefault:"true"`
	LocalHostSuffixes  []string `env:"LOCAL_HOST_SUFFIXES" envDefault:".internal,.run.app"`
	StripParams        []string `env:"STRIP_PARAMS"`
	DefaultLocale      string   `env:"DEFAULT_LOCALE" envDefault:"ja"`
	Locales            []string `env:"LOCALES" envDefault:"ja,en"`
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	CookieName string        `env:"SESSION_COOKIE" envDefault:"macho_session"`
	Secret     string        `env:"SESSION_SECRET"`
	Secure     bool          `env:"SESSION_SECURE" envDefault:"true"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
}

// TelemetryConfig controls logging and tracing.
type TelemetryConfig struct {
	ServiceName  string  `env:"SERVICE_NAME" envDefault:"macho-web"`
	Environment  string  `env:"ENV" envDefault:"local"`
	LogLevel     string  `env:"LOG_LEVEL" envDefault:"info"`
	OTelEndpoint string  `env:"OTEL_ENDPOINT"`
	SampleRatio  float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// ContentConfig points at optional on-disk overrides of embedded content.
type ContentConfig struct {
	ProgramsFile string `env:"PROGRAMS_FILE"`
	TemplatesDir string `env:"TEMPLATES_DIR"`
}

// ValidationError lists the fields that are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the offending field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile sets the dotenv file read before the process environment. An empty path
// disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap adds explicit values that take precedence over everything else.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load resolves the configuration. Precedence: dotenv < process env < WithEnvMap.
// Cloud Run's bare PORT is honoured when MACHO_WEB_PORT is unset.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	values, err := environment(options)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: values, Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if _, ok := values[Prefix+"PORT"]; !ok {
		if port := strings.TrimSpace(values["PORT"]); port != "" {
			cfg.Server.Port = port
		}
	}
	cfg.Site.CanonicalHost = strings.ToLower(strings.TrimSpace(cfg.Site.CanonicalHost))
	if cfg.Session.Secret == "" && cfg.Server.Dev {
		cfg.Session.Secret = devSessionSecret
		cfg.Session.Secure = false
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = defaultServiceName
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func environment(o loaderOptions) (map[string]string, error) {
	values, err := loadDotEnv(o.envFile)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]string{}
	}
	if o.useSystemEnv {
		for _, entry := range os.Environ() {
			if key, value, ok := strings.Cut(entry, "="); ok && key != "" {
				values[key] = value
			}
		}
	}
	for key, value := range o.envMap {
		values[key] = value
	}
	return values, nil
}

func validate(cfg Config) error {
	var bad []string
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port <= 0 || port > 65535 {
		bad = append(bad, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		bad = append(bad, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		bad = append(bad, "Server.WriteTimeout")
	}
	if cfg.Site.CanonicalHost == "" {
		bad = append(bad, "Site.CanonicalHost")
	}
	if !contains(cfg.Site.Locales, cfg.Site.DefaultLocale) {
		bad = append(bad, "Site.DefaultLocale")
	}
	if len(cfg.Session.Secret) < minSecretLength {
		bad = append(bad, "Session.Secret")
	}
	if cfg.Session.TTL <= 0 {
		bad = append(bad, "Session.TTL")
	}
	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		bad = append(bad, "Telemetry.SampleRatio")
	}
	if len(bad) > 0 {
		return &ValidationError{fields: bad}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	defer f.Close()

	values := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return values, nil
}
