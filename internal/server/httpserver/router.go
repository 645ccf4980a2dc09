package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/pixmesh-go/internal/core/service"
	"github.com/yndnr/pixmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/pixmesh-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Service *service.CanvasService

	// Feed backs the websocket route. Nil disables it.
	Feed *service.Feed

	// Metrics records request metrics and serves /metrics. Nil disables both.
	Metrics *metric.Registry

	Logger *slog.Logger

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy bool

	// RequestsPerSecond is the per-IP request throttle (0 = off).
	RequestsPerSecond float64
	RequestBurst      int
}

// NewRouter creates the HTTP handler with all routes and middleware.
//
// Order: Recover -> RequestID -> ClientIP -> CORS -> Observe -> RateLimit -> Handler
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	hcfg := handler.Config{
		Service: cfg.Service,
		Feed:    cfg.Feed,
		Logger:  log,
	}
	var obs RequestObserver
	var onThrottle func()
	if cfg.Metrics != nil {
		hcfg.Metrics = cfg.Metrics.Handler()
		obs = cfg.Metrics
		onThrottle = cfg.Metrics.RequestThrottled
	}
	h := handler.New(hcfg)

	return Chain(h,
		Recover(log),
		RequestID(),
		ClientIP(cfg.TrustProxy),
		CORS(),
		Observe(log, obs, h.Route),
		RateLimit(RateLimitConfig{
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.RequestBurst,
			Skip:              skipThrottle,
			OnThrottle:        onThrottle,
		}),
	)
}

// skipThrottle exempts preflight and operational routes.
func skipThrottle(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	switch r.URL.Path {
	case handler.RouteHealth, handler.RouteMetrics:
		return true
	}
	return false
}
