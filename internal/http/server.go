// Package http serves the fintrack JSON API and the HTMX transfer UI.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/ports"
	"fintrack/internal/transfer"
	appweb "fintrack/web"
)

const (
	balanceCacheSize = 500
	balanceCacheTTL  = 30 * time.Second
)

// Store is the storage the handlers read and write through.
type Store interface {
	ports.AccountReader
	ports.AccountWriter
	ports.CategoryStore
	ports.SummaryReader
	ports.TransactionBulkWriter
}

type Server struct {
	http.Server
	templates *template.Template
	store     Store
	transfers *transfer.Orchestrator
	sessions  *transfer.SessionStore
	auth      *auth.Authenticator
	logger    *log.Logger
	ready     func(context.Context) error
	now       func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	// Display balances only; transfers always query storage.
	balanceCache *cache.LRUCache[int64]
	cacheManager *cache.Manager

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime             time.Time
	transfersCompleted int64
	transfersFailed    int64
	cacheHits          int64
	cacheMisses        int64
}

type options struct {
	logger             *log.Logger
	rateLimitPerMinute int
	ready              func(context.Context) error
	now                func() time.Time
}

// Option customises a Server.
type Option func(*options)

func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRateLimit caps POST requests per client IP and minute.
func WithRateLimit(perMinute int) Option {
	return func(o *options) { o.rateLimitPerMinute = perMinute }
}

// WithReadiness sets the dependency check run by /readyz.
func WithReadiness(check func(context.Context) error) Option {
	return func(o *options) { o.ready = check }
}

// WithClock overrides the time source for form defaults and summaries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, store Store, transfers *transfer.Orchestrator, authn *auth.Authenticator, opts ...Option) *Server {
	o := options{
		rateLimitPerMinute: ratelimit.DefaultConfig().RequestsPerMinute,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Discard()
	}
	if authn == nil {
		authn = auth.New("", 0)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		store:            store,
		transfers:        transfers,
		sessions:         transfer.NewSessionStore(),
		auth:             authn,
		logger:           o.logger.WithComponent(log.ComponentHTTP),
		ready:            o.ready,
		now:              o.now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.rateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		balanceCache:     cache.NewLRUCache[int64](balanceCacheSize, balanceCacheTTL),
		cacheManager:     cache.NewManager(o.logger),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, o.logger)
	s.cacheManager.Register(s.balanceCache)
	s.cacheManager.StartCleanup(time.Minute)

	t, err := template.New("").Funcs(template.FuncMap{"euros": formatEuros}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err.Error(), log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// UI
	mux.Handle("GET /{$}", s.authed(s.handleIndex))
	mux.Handle("GET /ui/accounts", s.authed(s.handleAccountsPartial))
	mux.Handle("/transfer/open", s.authed(s.handleTransferOpen))
	mux.Handle("/transfer/close", s.authed(s.handleTransferClose))
	mux.Handle("/transfer/balance", s.authed(s.handleTransferBalance))
	mux.Handle("/transfer", s.authed(s.handleTransferSubmit))

	// JSON API
	mux.Handle("GET /api/summary", s.authed(s.handleAPISummary))
	mux.Handle("GET /api/accounts", s.authed(s.handleAPIListAccounts))
	mux.Handle("POST /api/accounts", s.authed(s.handleAPICreateAccount))
	mux.Handle("GET /api/categories", s.authed(s.handleAPIListCategories))
	mux.Handle("POST /api/categories", s.authed(s.handleAPICreateCategory))
	mux.Handle("POST /api/transactions/bulk-create", s.authed(s.handleAPIBulkCreate))
	mux.Handle("POST /api/transfers", s.authed(s.handleAPITransfer))

	limited := s.rateLimiter.Middleware(
		s.securityDetector.ExtractClientIP,
		func(r *http.Request) bool { return r.Method == http.MethodPost },
		s.onRateLimit,
	)
	var handler http.Handler = mux
	handler = limited(handler)
	handler = s.securityDetector.Middleware(s.logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return s.auth.Middleware(h)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeAPIError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, please try again later")
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
