package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{"MACHO_WEB_SESSION_SECRET": testSecret}),
	)
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, ":8080", cfg.Server.Addr())
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	require.False(t, cfg.Server.Dev)
	require.Equal(t, "www.machoda.com", cfg.Site.CanonicalHost)
	require.True(t, cfg.Site.CanonicalRedirects)
	require.Equal(t, []string{".internal", ".run.app"}, cfg.Site.LocalHostSuffixes)
	require.Equal(t, "ja", cfg.Site.DefaultLocale)
	require.Equal(t, []string{"ja", "en"}, cfg.Site.Locales)
	require.True(t, cfg.Session.Secure)
	require.Equal(t, 720*time.Hour, cfg.Session.TTL)
	require.Equal(t, "info", cfg.Telemetry.LogLevel)
	require.Empty(t, cfg.Telemetry.OTelEndpoint)
	require.Equal(t, 1.0, cfg.Telemetry.SampleRatio)
	require.Empty(t, cfg.Content.ProgramsFile)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"MACHO_WEB_SESSION_SECRET":    testSecret,
		"MACHO_WEB_PORT":              "9090",
		"PORT":                        "7070",
		"MACHO_WEB_CANONICAL_HOST":    " WWW.Example.COM ",
		"MACHO_WEB_STRIP_PARAMS":      "fbclid,gclid",
		"MACHO_WEB_OTEL_ENDPOINT":     "http://collector:4318",
		"MACHO_WEB_OTEL_SAMPLE_RATIO": "0.25",
		"MACHO_WEB_PROGRAMS_FILE":     "/srv/programs.yaml",
	}))
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "www.example.com", cfg.Site.CanonicalHost)
	require.Equal(t, []string{"fbclid", "gclid"}, cfg.Site.StripParams)
	require.Equal(t, "http://collector:4318", cfg.Telemetry.OTelEndpoint)
	require.Equal(t, 0.25, cfg.Telemetry.SampleRatio)
	require.Equal(t, "/srv/programs.yaml", cfg.Content.ProgramsFile)
}

func TestLoadFallsBackToBarePort(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"MACHO_WEB_SESSION_SECRET": testSecret,
		"PORT":                     "7070",
	}))
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadDevUsesDevelopmentSecret(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"MACHO_WEB_DEV": "true",
	}))
	require.NoError(t, err)
	require.True(t, cfg.Server.Dev)
	require.NotEmpty(t, cfg.Session.Secret)
	require.False(t, cfg.Session.Secure)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"MACHO_WEB_PORT":              "http",
		"MACHO_WEB_DEFAULT_LOCALE":    "fr",
		"MACHO_WEB_OTEL_SAMPLE_RATIO": "2",
	}))
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.ElementsMatch(t, []string{
		"Server.Port",
		"Site.DefaultLocale",
		"Session.Secret",
		"Telemetry.SampleRatio",
	}, vErr.Fields())
}

func TestLoadParseError(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"MACHO_WEB_SESSION_SECRET": testSecret,
		"MACHO_WEB_READ_TIMEOUT":   "soon",
	}))
	require.Error(t, err)
	var vErr *ValidationError
	require.False(t, errors.As(err, &vErr))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# local overrides\nexport MACHO_WEB_SESSION_SECRET=\"" + testSecret + "\"\nMACHO_WEB_LOG_LEVEL=debug\nMACHO_WEB_PORT=8081\nbroken line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(path), WithEnvMap(map[string]string{
		"MACHO_WEB_PORT": "8082",
	}))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Telemetry.LogLevel)
	require.Equal(t, testSecret, cfg.Session.Secret)
	require.Equal(t, "8082", cfg.Server.Port, "explicit values win over the dotenv file")
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(filepath.Join(t.TempDir(), "absent.env")), WithEnvMap(map[string]string{
		"MACHO_WEB_SESSION_SECRET": testSecret,
	}))
	require.NoError(t, err)
}
