package ytsubs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/anatolykoptev/go-kit/env"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xybydy/go-ytsubs/pkg/youtube"
)

// Config is the file and environment based configuration of the ytsubs command.
// Precedence: defaults < TOML file < environment variables. The command applies its flags on top.
type Config struct {
	BindAddr              string        `toml:"bind_addr"`
	Port                  int           `toml:"port"`
	DefaultLang           string        `toml:"default_lang"`
	FetchTimeout          time.Duration `toml:"fetch_timeout"`
	LogLevel              string        `toml:"log_level"`
	LogEncoding           string        `toml:"log_encoding"`
	DisableRequestLogging bool          `toml:"disable_request_logging"`
	LogIPs                bool          `toml:"log_ips"`
	LogUserAgent          bool          `toml:"log_user_agent"`
	Metrics               bool          `toml:"metrics"`
	Profiling             bool          `toml:"profiling"`
	ExposeUpstreamErrors  bool          `toml:"expose_upstream_errors"`
	StrictVideoID         bool          `toml:"strict_video_id"`
	HandleEtag            bool          `toml:"handle_etag"`
	CORS                  bool          `toml:"cors"`

	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig configures the YouTube client.
type YouTubeConfig struct {
	BaseURL        string        `toml:"base_url"`
	Timeout        time.Duration `toml:"timeout"`
	UserAgent      string        `toml:"user_agent"`
	AcceptLanguage string        `toml:"accept_language"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BindAddr:     DefaultOptions.BindAddr,
		Port:         DefaultOptions.Port,
		DefaultLang:  DefaultOptions.DefaultLang,
		FetchTimeout: DefaultOptions.FetchTimeout,
		LogLevel:     DefaultOptions.LoggingLevel,
		LogEncoding:  DefaultOptions.LogEncoding,
		YouTube: YouTubeConfig{
			BaseURL:        youtube.DefaultClientOptions.BaseURL,
			Timeout:        youtube.DefaultClientOptions.Timeout,
			UserAgent:      youtube.DefaultClientOptions.UserAgent,
			AcceptLanguage: youtube.DefaultClientOptions.AcceptLanguage,
		},
	}
}

// LoadConfig reads the TOML file at path on top of the defaults and then applies environment variables.
// An empty path or a file that doesn't exist is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.BindAddr = env.Str("YTSUBS_BIND_ADDR", c.BindAddr)
	c.Port = env.Int("YTSUBS_PORT", c.Port)
	c.DefaultLang = env.Str("YTSUBS_DEFAULT_LANG", c.DefaultLang)
	c.FetchTimeout = env.Duration("YTSUBS_FETCH_TIMEOUT", c.FetchTimeout)
	c.LogLevel = env.Str("YTSUBS_LOG_LEVEL", c.LogLevel)
	c.LogEncoding = env.Str("YTSUBS_LOG_ENCODING", c.LogEncoding)
	c.YouTube.UserAgent = env.Str("YTSUBS_USER_AGENT", c.YouTube.UserAgent)
	c.YouTube.AcceptLanguage = env.Str("YTSUBS_ACCEPT_LANGUAGE", c.YouTube.AcceptLanguage)

	for key, field := range map[string]*bool{
		"YTSUBS_METRICS":                &c.Metrics,
		"YTSUBS_PROFILING":              &c.Profiling,
		"YTSUBS_EXPOSE_UPSTREAM_ERRORS": &c.ExposeUpstreamErrors,
		"YTSUBS_STRICT_VIDEO_ID":        &c.StrictVideoID,
		"YTSUBS_HANDLE_ETAG":            &c.HandleEtag,
		"YTSUBS_CORS":                   &c.CORS,
	} {
		v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(*field)))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*field = v
	}
	return nil
}

// Validate checks config values are within acceptable bounds.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	if c.LogEncoding != "console" && c.LogEncoding != "json" {
		return fmt.Errorf("unsupported log encoding %q (valid: console, json)", c.LogEncoding)
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.YouTube.Timeout <= 0 {
		return errors.New("youtube timeout must be positive")
	}
	if c.DefaultLang == "" {
		return errors.New("default language cannot be empty")
	}
	if c.DisableRequestLogging && (c.LogIPs || c.LogUserAgent) {
		return errors.New("log_ips and log_user_agent require request logging")
	}
	return nil
}

// Options returns the server options for the configuration.
// The logger replaces LoggingLevel and LogEncoding, so the caller can share it with the YouTube client.
func (c Config) Options(logger *zap.Logger) Options {
	opts := Options{
		BindAddr:              c.BindAddr,
		Port:                  c.Port,
		DefaultLang:           c.DefaultLang,
		FetchTimeout:          c.FetchTimeout,
		DisableRequestLogging: c.DisableRequestLogging,
		LogIPs:                c.LogIPs,
		LogUserAgent:          c.LogUserAgent,
		Metrics:               c.Metrics,
		Profiling:             c.Profiling,
		ExposeUpstreamErrors:  c.ExposeUpstreamErrors,
		StrictVideoID:         c.StrictVideoID,
		HandleEtag:            c.HandleEtag,
		CORS:                  c.CORS,
		Logger:                logger,
	}
	if logger == nil {
		opts.LoggingLevel = c.LogLevel
		opts.LogEncoding = c.LogEncoding
	}
	return opts
}

// ClientOptions returns the options for the YouTube client.
func (c Config) ClientOptions() youtube.ClientOptions {
	return youtube.ClientOptions{
		BaseURL:        c.YouTube.BaseURL,
		Timeout:        c.YouTube.Timeout,
		UserAgent:      c.YouTube.UserAgent,
		AcceptLanguage: c.YouTube.AcceptLanguage,
	}
}
