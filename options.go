package ytsubs

import (
	"time"

	"go.uber.org/zap"
)

// Options are the options that can be used to configure the server.
type Options struct {
	// The interface to bind to.
	// "0.0.0.0" to bind to all interfaces. "localhost" to *exclude* requests from other machines.
	// Default "localhost".
	BindAddr string
	// The port to listen on.
	// Default 8000.
	Port int
	// Version that's reported by the root endpoint.
	// Default "1.0.0".
	Version string
	// Language of "/subtitles" requests without "lang" query parameter.
	// Default "uk".
	DefaultLang string
	// Timeout for a single call to the transcript source. Expiry leads to a "504 Gateway Timeout" response.
	// Default 30s.
	FetchTimeout time.Duration
	// The logging level.
	// Only logs with the same or a higher log level will be shown.
	// For example when you set it to "info", info, warn and error logs will be shown, but no debug logs.
	// Accepts "debug", "info", "warn", "error", "dpanic", "panic" and "fatal".
	// Default "info".
	LoggingLevel string
	// Configures zap's log encoding.
	// "console" will format a log line for example like this:
	// 2020-06-29T22:11:41.289+0200	INFO	Finished setting up server
	// "json" will format a log line for example like this:
	// {"level":"info","ts":"2020-06-29T22:11:41.289+0200","msg":"Finished setting up server"}
	// Default "console".
	LogEncoding string
	// Custom zap logger. When set, LoggingLevel and LogEncoding are ignored and must be empty.
	Logger *zap.Logger
	// Flag for indicating whether requests should be logged.
	// Default false (meaning requests will be logged by default).
	DisableRequestLogging bool
	// Flag for indicating whether IP addresses should be logged.
	// Default false.
	LogIPs bool
	// Flag for indicating whether the user agent header should be logged.
	// Default false.
	LogUserAgent bool
	// Flag for indicating whether you want to collect and expose Prometheus metrics.
	// The URL is "/metrics".
	// Default false.
	Metrics bool
	// Flag for indicating whether you want to expose the Go pprof endpoints under "/debug/pprof".
	// Default false.
	Profiling bool
	// Flag for indicating whether the text of upstream errors should be sent to clients.
	// When false a generic message is sent and the error is only logged.
	// Default false.
	ExposeUpstreamErrors bool
	// Flag for indicating whether extracted video IDs must have the shape of a YouTube video ID.
	// When true a malformed ID leads to a "400 Bad Request" response instead of being passed on to YouTube.
	// Default false.
	StrictVideoID bool
	// Flag for indicating whether responses should carry an ETag header,
	// so that requests with a matching "If-None-Match" header get a "304 Not Modified" response.
	// Default false.
	HandleEtag bool
	// Flag for indicating whether CORS headers should be sent, so that browsers on other origins can use the API.
	// Default false.
	CORS bool
}

// DefaultOptions is an Options object with default values.
// For fields that aren't set here the zero value is the default value.
var DefaultOptions = Options{
	BindAddr:     "localhost",
	Port:         8000,
	Version:      "1.0.0",
	DefaultLang:  "uk",
	FetchTimeout: 30 * time.Second,
	LoggingLevel: "info",
	LogEncoding:  "console",
}
