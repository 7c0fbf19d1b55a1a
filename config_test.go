package ytsubs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	ytsubs "github.com/xybydy/go-ytsubs"
	"github.com/xybydy/go-ytsubs/pkg/youtube"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ytsubs.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := ytsubs.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, ytsubs.DefaultConfig(), cfg)

	cfg, err = ytsubs.LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "localhost", cfg.BindAddr)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, "uk", cfg.DefaultLang)
	require.Equal(t, 30*time.Second, cfg.FetchTimeout)
	require.Equal(t, youtube.DefaultClientOptions.BaseURL, cfg.YouTube.BaseURL)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
bind_addr = "0.0.0.0"
port = 9000
default_lang = "en"
fetch_timeout = "45s"
log_encoding = "json"
metrics = true
strict_video_id = true

[youtube]
base_url = "http://localhost:1234"
timeout = "5s"
`)

	cfg, err := ytsubs.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.BindAddr)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "en", cfg.DefaultLang)
	require.Equal(t, 45*time.Second, cfg.FetchTimeout)
	require.Equal(t, "json", cfg.LogEncoding)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.Metrics)
	require.True(t, cfg.StrictVideoID)
	require.False(t, cfg.Profiling)
	require.Equal(t, "http://localhost:1234", cfg.YouTube.BaseURL)
	require.Equal(t, 5*time.Second, cfg.YouTube.Timeout)
	require.Equal(t, youtube.DefaultClientOptions.UserAgent, cfg.YouTube.UserAgent)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
port = 9000
metrics = false
`)
	t.Setenv("YTSUBS_PORT", "9100")
	t.Setenv("YTSUBS_METRICS", "true")
	t.Setenv("YTSUBS_DEFAULT_LANG", "de")
	t.Setenv("YTSUBS_FETCH_TIMEOUT", "2s")

	cfg, err := ytsubs.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Port)
	require.True(t, cfg.Metrics)
	require.Equal(t, "de", cfg.DefaultLang)
	require.Equal(t, 2*time.Second, cfg.FetchTimeout)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := ytsubs.LoadConfig(writeConfig(t, `port = `))
		require.ErrorContains(t, err, "parsing config")
	})
	t.Run("negative youtube timeout", func(t *testing.T) {
		_, err := ytsubs.LoadConfig(writeConfig(t, "[youtube]\ntimeout = \"-5s\"\n"))
		require.ErrorContains(t, err, "youtube timeout must be positive")
	})
	t.Run("invalid value", func(t *testing.T) {
		_, err := ytsubs.LoadConfig(writeConfig(t, `log_encoding = "xml"`))
		require.ErrorContains(t, err, "invalid config")
	})
	t.Run("invalid bool env", func(t *testing.T) {
		t.Setenv("YTSUBS_CORS", "sometimes")
		_, err := ytsubs.LoadConfig("")
		require.ErrorContains(t, err, "YTSUBS_CORS")
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *ytsubs.Config)
		wantErr string
	}{
		{"defaults", func(*ytsubs.Config) {}, ""},
		{"port zero", func(c *ytsubs.Config) { c.Port = 0 }, "port 0 out of range"},
		{"port too high", func(c *ytsubs.Config) { c.Port = 70000 }, "port 70000 out of range"},
		{"log level", func(c *ytsubs.Config) { c.LogLevel = "verbose" }, `unsupported log level "verbose"`},
		{"log encoding", func(c *ytsubs.Config) { c.LogEncoding = "xml" }, `unsupported log encoding "xml"`},
		{"fetch timeout", func(c *ytsubs.Config) { c.FetchTimeout = 0 }, "fetch timeout must be positive"},
		{"youtube timeout zero", func(c *ytsubs.Config) { c.YouTube.Timeout = 0 }, "youtube timeout must be positive"},
		{"youtube timeout negative", func(c *ytsubs.Config) { c.YouTube.Timeout = -time.Second }, "youtube timeout must be positive"},
		{"default lang", func(c *ytsubs.Config) { c.DefaultLang = "" }, "default language cannot be empty"},
		{"request logging", func(c *ytsubs.Config) {
			c.DisableRequestLogging = true
			c.LogIPs = true
		}, "require request logging"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := ytsubs.DefaultConfig()
			test.modify(&cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, test.wantErr)
		})
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := ytsubs.DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.HandleEtag = true

	opts := cfg.Options(nil)
	require.Nil(t, opts.Logger)
	require.Equal(t, "debug", opts.LoggingLevel)
	require.Equal(t, "console", opts.LogEncoding)
	require.True(t, opts.HandleEtag)

	logger := zap.NewNop()
	opts = cfg.Options(logger)
	require.Same(t, logger, opts.Logger)
	require.Empty(t, opts.LoggingLevel)
	require.Empty(t, opts.LogEncoding)

	// The options must be accepted by the server as they are.
	_, err := ytsubs.NewServer(&fakeSource{}, opts)
	require.NoError(t, err)

	clientOpts := cfg.ClientOptions()
	require.Equal(t, youtube.DefaultClientOptions.BaseURL, clientOpts.BaseURL)
	require.Equal(t, youtube.DefaultClientOptions.Timeout, clientOpts.Timeout)
}
