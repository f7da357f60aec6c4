package api

import (
	"net/http"
	"time"

	"ubot-platform/internal/infra/api/apiv1"
	"ubot-platform/internal/infra/metrics"
	red "ubot-platform/internal/infra/redis"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterConfig holds the cross-cutting knobs of the HTTP surface.
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// Limiter throttles voucher check/validate per client; nil disables it.
	Limiter Limiter
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Without it the limiter keys on the connection's RemoteAddr.
	TrustProxy bool
}

// NewRouter assembles middleware, the API routes and /metrics.
func NewRouter(srv *apiv1.Server, cfg RouterConfig, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		TraceID(),
		RequestLog(logger),
		Recover(logger),
		Timeout(cfg.RequestTimeout),
		CORS(cfg.AllowedOrigins),
	)

	limited := RateLimit(cfg.Limiter, red.ClientRouteKey, logger)
	r.Group(func(r chi.Router) {
		r.Use(limitPaths(limited, "/api/vouchers/check", "/api/deployment/validate-voucher"))
		apiv1.RegisterAPIV1(r, srv)
	})

	r.Handle("/metrics", metrics.Handler())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}

// limitPaths applies mw only to requests for the given paths.
func limitPaths(mw Middleware, paths ...string) Middleware {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := set[r.URL.Path]; ok {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
