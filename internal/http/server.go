package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	appweb "ledger/web"
)

// Ledger is the session the UI drives.
type Ledger interface {
	Add(ctx context.Context, in ledger.Input) (core.Transaction, error)
	SetCurrency(code string) error
	View() ledger.View
}

// Exporter produces the CSV download from the remote mirror.
type Exporter interface {
	Export(ctx context.Context) ([]byte, error)
}

type Options struct {
	Logger *log.Logger
	// Currencies offered in the selector. Defaults to USD, EUR and INR.
	Currencies []string
	RateLimit  ratelimit.Config
	// Templates overrides the embedded templates.
	Templates fs.FS
}

type Server struct {
	http.Server
	templates  *template.Template
	ledger     Ledger
	exporter   Exporter
	currencies []string
	logger     *log.Logger
	limiter    *ratelimit.Limiter
	tracer     *trace.Middleware
	started    time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, l Ledger, exp Exporter, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	currencies := opts.Currencies
	if len(currencies) == 0 {
		currencies = defaultCurrencies
	}

	s := &Server{
		ledger:     l,
		exporter:   exp,
		currencies: currencies,
		logger:     logger,
		limiter:    ratelimit.NewLimiter(opts.RateLimit),
		tracer:     trace.NewMiddleware(logger, security.ClientIP),
		started:    time.Now(),
	}

	templates := opts.Templates
	if templates == nil {
		templates = appweb.TemplatesFS
	}
	t, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /transactions", s.handleAddTransaction)
	mux.HandleFunc("POST /currency", s.handleCurrency)
	mux.HandleFunc("GET /ui/ledger", s.handleLedger)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(security.ClientIP, http.MethodPost)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.Middleware(logger, trace.RequestID)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
