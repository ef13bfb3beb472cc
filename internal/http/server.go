package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"spendlog/internal/cache"
	applog "spendlog/internal/log"
	"spendlog/internal/middleware/ratelimit"
	"spendlog/internal/middleware/security"
	"spendlog/internal/middleware/trace"
	"spendlog/internal/notify"
	"spendlog/internal/query"
	"spendlog/internal/tracker"
	appweb "spendlog/web"
)

// Options configures a Server.
type Options struct {
	Addr string

	// Store is required. Its notifier should be Notifications so store
	// messages reach the banner.
	Store *tracker.Store

	// Notifications backs the index banner. Nil disables it.
	Notifications *notify.Center

	// Queries compiles the q filter. Nil creates a default compiler.
	Queries *query.Compiler

	Logger             *applog.Logger
	RateLimitPerMinute int

	// Ready reports backend readiness for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error

	// CacheSweepInterval controls expiry sweeps of the query cache.
	CacheSweepInterval time.Duration
}

// Server is the expense tracker web server.
type Server struct {
	http.Server
	templates     *template.Template
	store         *tracker.Store
	notifications *notify.Center
	queries       *query.Compiler
	ready         func(ctx context.Context) error
	logger        *applog.Logger

	detector     *security.Detector
	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	caches       *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	queries := opts.Queries
	if queries == nil {
		queries = query.NewCompiler(128, 0, logger)
	}
	sweep := opts.CacheSweepInterval
	if sweep <= 0 {
		sweep = 5 * time.Minute
	}

	s := &Server{
		store:         opts.Store,
		notifications: opts.Notifications,
		queries:       queries,
		ready:         opts.Ready,
		logger:        logger.WithComponent(applog.ComponentHTTP),
		detector:      security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		caches: cache.NewManager(logger),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs(s.store.Now)).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates",
			applog.FieldOperation, applog.OpParse, applog.FieldError, err.Error())
	} else {
		s.templates = t
	}

	s.caches.Register(queries.Cache())
	s.caches.Start(context.Background(), sweep)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /ui/expenses", s.handleExpenseList)
	mux.HandleFunc("GET /ui/summary", s.handleSummary)
	mux.HandleFunc("GET /export", s.handleExport)

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(s.logger)(h)
	h = s.tracer.Middleware(h)
	return h
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		s.caches.Stop()
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Close stops background routines without waiting for connections. It is
// meant for servers that were never started, such as in tests.
func (s *Server) Close() error {
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
	})
	return s.Server.Close()
}
