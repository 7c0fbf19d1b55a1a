package ytsubs

import (
	"errors"
	"fmt"
	"net/http"
	netpprof "net/http/pprof"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	"github.com/xybydy/go-ytsubs/types"
)

// DefaultDescriptor is the descriptor returned by the root endpoint, with the version taken from the options.
var DefaultDescriptor = types.Descriptor{
	Message: "YouTube Transcript API",
	Endpoints: map[string]string{
		"/subtitles":      "GET субтитри",
		"/subtitles/info": "GET доступні мови",
		"/health":         "GET перевірка",
	},
}

// Server is the transcript HTTP API.
// You can create one with NewServer() and then run it with Run(), or mount the result of App() yourself.
type Server struct {
	descriptor        types.Descriptor
	fetcher           *Fetcher
	opts              Options
	logger            *zap.Logger
	customMiddlewares []customMiddleware
	customEndpoints   []customEndpoint
}

// NewServer creates a new Server object that can be started with Run().
// The source is the collaborator transcripts are fetched from, usually a *youtube.Client.
// opts can be the zero value of Options.
func NewServer(source TranscriptSource, opts Options) (*Server, error) {
	// Precondition checks
	switch {
	case source == nil:
		return nil, errors.New("no transcript source was passed")
	case opts.DisableRequestLogging && (opts.LogIPs || opts.LogUserAgent):
		return nil, errors.New("enabling IP or user agent logging doesn't make sense when disabling request logging")
	case opts.Logger != nil && (opts.LoggingLevel != "" || opts.LogEncoding != ""):
		return nil, errors.New("setting a logging level or encoding in the options doesn't make sense when you already set a custom logger")
	case opts.FetchTimeout < 0:
		return nil, errors.New("the fetch timeout can't be negative")
	case opts.Port < 0 || opts.Port > 65535:
		return nil, fmt.Errorf("invalid port %d", opts.Port)
	}

	// Set default values
	if opts.BindAddr == "" {
		opts.BindAddr = DefaultOptions.BindAddr
	}
	if opts.Port == 0 {
		opts.Port = DefaultOptions.Port
	}
	if opts.Version == "" {
		opts.Version = DefaultOptions.Version
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = DefaultOptions.DefaultLang
	}
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = DefaultOptions.FetchTimeout
	}

	// Configure logger if no custom one is set
	if opts.Logger == nil {
		if opts.LoggingLevel == "" {
			opts.LoggingLevel = DefaultOptions.LoggingLevel
		}
		if opts.LogEncoding == "" {
			opts.LogEncoding = DefaultOptions.LogEncoding
		}
		var err error
		if opts.Logger, err = NewLogger(opts.LoggingLevel, opts.LogEncoding); err != nil {
			return nil, fmt.Errorf("couldn't create new logger: %w", err)
		}
	}

	descriptor := DefaultDescriptor.Clone()
	descriptor.Version = opts.Version

	return &Server{
		descriptor: descriptor,
		fetcher:    NewFetcher(source, FetcherOptions{Timeout: opts.FetchTimeout}, opts.Logger),
		opts:       opts,
		logger:     opts.Logger,
	}, nil
}

// Descriptor returns a copy of the descriptor the root endpoint responds with.
func (s *Server) Descriptor() types.Descriptor {
	return s.descriptor.Clone()
}

// AddMiddleware appends a custom middleware to the chain of existing middlewares.
// Set path to an empty string or "/" to let the middleware apply to all routes.
// Don't forget to call c.Next() on the Fiber context!
func (s *Server) AddMiddleware(path string, middleware fiber.Handler) {
	s.customMiddlewares = append(s.customMiddlewares, customMiddleware{
		path: path,
		mw:   middleware,
	})
}

// AddEndpoint adds a custom endpoint (a route and its handler).
func (s *Server) AddEndpoint(method, path string, handler fiber.Handler) {
	s.customEndpoints = append(s.customEndpoints, customEndpoint{
		method:  method,
		path:    path,
		handler: handler,
	})
}

// App creates the Fiber app with all middlewares and routes registered.
// Each call creates a new app, so register custom middlewares and endpoints before.
func (s *Server) App() *fiber.App {
	logger := s.logger

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			detail := "Внутрішня помилка сервера"
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				detail = e.Message
			}
			logger.Error("Fiber's error handler was called", zap.Error(err), zap.String("url", c.OriginalURL()))
			return c.Status(code).JSON(types.ErrorResponse{Detail: detail})
		},
	})

	// Middlewares

	app.Use(recover.New())
	if !s.opts.DisableRequestLogging {
		app.Use(createLoggingMiddleware(logger, s.opts.LogIPs, s.opts.LogUserAgent))
	}
	if s.opts.Metrics {
		app.Use(createMetricsMiddleware())
	}
	if s.opts.CORS {
		app.Use(corsMiddleware())
	}
	// Custom middlewares
	for _, customMW := range s.customMiddlewares {
		app.Use(customMW.path, customMW.mw)
	}

	// Extra endpoints

	app.Get("/health", createHealthHandler(logger))
	// Optional profiling
	if s.opts.Profiling {
		group := app.Group("/debug/pprof")

		group.Get("/", func(c fiber.Ctx) error {
			c.Set(fiber.HeaderContentType, fiber.MIMETextHTML)
			return adaptor.HTTPHandlerFunc(netpprof.Index)(c)
		})
		for _, p := range pprof.Profiles() {
			group.Get("/"+p.Name(), adaptor.HTTPHandler(netpprof.Handler(p.Name())))
		}
		group.Get("/cmdline", adaptor.HTTPHandlerFunc(netpprof.Cmdline))
		group.Get("/profile", adaptor.HTTPHandlerFunc(netpprof.Profile))
		group.Get("/trace", adaptor.HTTPHandlerFunc(netpprof.Trace))
	}
	// Optional metrics
	if s.opts.Metrics {
		app.Get("/metrics", adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			metrics.WritePrometheus(w, true)
		}))
	}

	// Transcript endpoints

	hOpts := handlerOptions{
		defaultLang:          s.opts.DefaultLang,
		strictVideoID:        s.opts.StrictVideoID,
		exposeUpstreamErrors: s.opts.ExposeUpstreamErrors,
		handleEtag:           s.opts.HandleEtag,
	}
	app.Get("/", createRootHandler(s.descriptor, logger))
	app.Get("/subtitles", createSubtitlesHandler(s.fetcher, hOpts, logger))
	app.Get("/subtitles/info", createInfoHandler(s.fetcher, hOpts, logger))

	// Custom endpoints
	for _, customEndpoint := range s.customEndpoints {
		app.Add([]string{customEndpoint.method}, customEndpoint.path, customEndpoint.handler)
	}

	return app
}

// Run starts the server. It sets up an HTTP server that handles requests to "/subtitles" etc. and gracefully handles shutdowns.
// The call is *blocking*, so use the stoppingChan param if you want to be notified when the server is about to shut down
// because of a system signal like Ctrl+C or `docker stop`. It should be a buffered channel with a capacity of 1.
func (s *Server) Run(stoppingChan chan bool) {
	logger := s.logger

	defer func() {
		// Syncing stderr fails on some platforms, which isn't worth an error log.
		_ = logger.Sync()
	}()

	// Make sure the passed channel is buffered, so we can send a message before shutting down and not be blocked by the channel.
	if stoppingChan != nil && cap(stoppingChan) < 1 {
		logger.Fatal("The passed stopping channel isn't buffered")
	}

	logger.Info("Setting up server...")
	app := s.App()
	logger.Info("Finished setting up server")

	stopping := false
	stoppingPtr := &stopping

	addr := s.opts.BindAddr + ":" + strconv.Itoa(s.opts.Port)
	logger.Info("Starting server", zap.String("address", addr))
	go func() {
		if err := app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			if !*stoppingPtr {
				logger.Fatal("Couldn't start server", zap.Error(err))
			} else {
				logger.Fatal("Error in app.Listen() during server shutdown", zap.Error(err))
			}
		}
	}()

	// Graceful shutdown

	c := make(chan os.Signal, 1)
	// Accept SIGINT (Ctrl+C) and SIGTERM (`docker stop`)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	logger.Info("Received signal, shutting down server...", zap.Stringer("signal", sig))
	*stoppingPtr = true
	if stoppingChan != nil {
		stoppingChan <- true
	}
	// Graceful shutdown, waiting for all current requests to finish without accepting new ones.
	if err := app.Shutdown(); err != nil {
		logger.Fatal("Error shutting down server", zap.Error(err))
	}
	logger.Info("Finished shutting down server")
}
