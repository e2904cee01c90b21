package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ibms/internal/cache"
	applog "ibms/internal/log"
	"ibms/internal/middleware/ratelimit"
	"ibms/internal/middleware/security"
	"ibms/internal/middleware/trace"
)

const readyTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.deps.Store.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed",
				applog.FieldComponent, applog.ComponentStorage,
				applog.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

type metricsResponse struct {
	UptimeSeconds int64                     `json:"uptimeSeconds"`
	Requests      trace.Metrics             `json:"requests"`
	RateLimit     ratelimit.Metrics         `json:"rateLimit"`
	Security      security.DetectionMetrics `json:"security"`
	Caches        map[string]cache.Stats    `json:"caches"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	caches := make(map[string]cache.Stats, len(s.deps.CacheStats))
	for name, stats := range s.deps.CacheStats {
		caches[name] = stats()
	}
	NewJSONResponse().Data(metricsResponse{
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Requests:      s.tracer.GetMetrics(),
		RateLimit:     s.limiter.GetMetrics(),
		Security:      s.detector.GetMetrics(),
		Caches:        caches,
	}).Write(w)
}
