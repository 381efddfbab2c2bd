package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budget/internal/app"
	"budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
)

// Server exposes an App over HTTP.
type Server struct {
	http.Server
	app      *app.App
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server listening on addr.
func NewServer(addr string, a *app.App, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		app:      a,
		logger:   logger.WithComponent(log.ComponentHTTP),
		detector: security.NewDetector(logger),
		started:  time.Now(),
	}
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: a.Config.RateLimitPerMinute})
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PATCH /api/settings", s.handlePatchSettings)
	mux.HandleFunc("POST /api/settings/theme/toggle", s.handleToggleTheme)
	mux.HandleFunc("POST /api/onboarding", s.handleOnboarding)
	mux.HandleFunc("GET /api/income-categories", s.handleIncomeCategories)

	mux.HandleFunc("GET /api/transactions", s.onboarded(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.onboarded(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.onboarded(s.handleGetTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.onboarded(s.handleUpdateTransaction))
	mux.HandleFunc("POST /api/transactions/{id}/delete", s.onboarded(s.handleRequestDelete))
	mux.HandleFunc("POST /api/deletions/{token}/confirm", s.onboarded(s.handleConfirmDelete))
	mux.HandleFunc("DELETE /api/deletions/{token}", s.onboarded(s.handleCancelDelete))

	mux.HandleFunc("GET /api/balance", s.onboarded(s.handleBalance))
	mux.HandleFunc("GET /api/summary", s.onboarded(s.handleSummary))
	mux.HandleFunc("GET /api/history", s.onboarded(s.handleHistory))
	mux.HandleFunc("GET /api/recent", s.onboarded(s.handleRecent))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// middleware wraps h, outermost first: tracing, screening, security
// headers, then rate limiting of mutating requests.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating,
		func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			TooManyRequestsError().Write(w, r)
		})(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	return s.tracer.Middleware(h)
}

// onboarded answers 409 until onboarding is complete.
func (s *Server) onboarded(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.app.RequireOnboarded(); err != nil {
			ConflictError(err.Error()).Write(w, r)
			return
		}
		next(w, r)
	}
}

// Shutdown stops the rate limiter and gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
