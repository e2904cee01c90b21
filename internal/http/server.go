package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"ibms/internal/auth"
	"ibms/internal/cache"
	"ibms/internal/ifsc"
	applog "ibms/internal/log"
	"ibms/internal/middleware/ratelimit"
	"ibms/internal/middleware/security"
	"ibms/internal/middleware/trace"
	"ibms/internal/services"
)

// IFSCLookup resolves bank details. *ifsc.Client satisfies it.
type IFSCLookup interface {
	Lookup(ctx context.Context, code string) ifsc.Details
}

// Pinger reports whether the store can serve requests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Investors  *services.InvestorService
	Portfolios *services.PortfolioService
	Admin      *services.AdminService
	Reports    *services.ReportService
	Auth       *auth.Service
	IFSC       IFSCLookup
	Store      Pinger

	// CacheStats is published on /metrics, keyed by cache name.
	CacheStats map[string]func() cache.Stats

	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	deps     Deps
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	detector := security.NewDetector()
	for _, cidr := range deps.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			slog.Warn("Ignoring trusted proxy",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldError, err)
		}
	}

	s := &Server{
		Server:   http.Server{Addr: addr},
		deps:     deps,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		started:  time.Now(),
	}

	router := s.routes()

	// Outermost first: every request is traced, then hardened, screened and
	// throttled before routing.
	var h http.Handler = router
	h = s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)(h)
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.RequestMiddleware(applog.ComponentHTTP, trace.FromRequest, detector.ExtractClientIP)(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireAuth)

	read := func(path string, h http.HandlerFunc) {
		authed.HandleFunc(path, h).Methods(http.MethodGet)
	}
	write := func(path string, h http.HandlerFunc, method string) {
		authed.Handle(path, s.requireAdmin(h)).Methods(method)
	}

	authed.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	read("/auth/me", s.handleMe)

	read("/investors", s.handleListInvestors)
	write("/investors", s.handleCreateInvestor, http.MethodPost)
	read("/investors/{id}", s.handleGetInvestor)
	write("/investors/{id}", s.handleUpdateInvestor, http.MethodPut)
	write("/investors/{id}", s.handleDeleteInvestor, http.MethodDelete)
	write("/investors/{id}/investments", s.handleAddInvestment, http.MethodPost)
	write("/investors/{id}/investments/{invId}", s.handleUpdateInvestment, http.MethodPut)
	write("/investors/{id}/investments/{invId}", s.handleDeleteInvestment, http.MethodDelete)

	read("/portfolios", s.handleListPortfolios)
	write("/portfolios", s.handleCreatePortfolio, http.MethodPost)
	read("/portfolios/{id}", s.handleGetPortfolio)
	write("/portfolios/{id}", s.handleUpdatePortfolio, http.MethodPut)
	write("/portfolios/{id}", s.handleDeletePortfolio, http.MethodDelete)
	write("/portfolios/{id}/sub-marketors", s.handleAddSubMarketor, http.MethodPost)
	write("/portfolios/{id}/sub-marketors/{subId}", s.handleUpdateSubMarketor, http.MethodPut)
	write("/portfolios/{id}/sub-marketors/{subId}", s.handleDeleteSubMarketor, http.MethodDelete)
	read("/sub-marketors", s.handleListSubMarketors)

	// The profile routes must precede /admin-banks/{id}.
	read("/admin-banks/profile", s.handleGetProfile)
	write("/admin-banks/profile", s.handleUpdateProfile, http.MethodPut)
	read("/admin-banks", s.handleListBanks)
	write("/admin-banks", s.handleCreateBank, http.MethodPost)
	write("/admin-banks/{id}", s.handleUpdateBank, http.MethodPut)

	read("/dashboard/stats", s.handleDashboard)
	read("/reports/overall", s.handleOverallReport)
	read("/reports/investments", s.handleInvestmentReport)
	read("/reports/marketers", s.handleMarketerReport)
	read("/reports/sub-marketors", s.handleSubMarketorReport)
	read("/reports/export.xlsx", s.handleExportXLSX)

	read("/ifsc/{code}", s.handleIFSC)

	return r
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
