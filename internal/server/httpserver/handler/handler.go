package handler

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/pixmesh-go/internal/core/service"
	"github.com/yndnr/pixmesh-go/internal/telemetry/logger"
)

// Route labels used for metrics. Unknown paths share RouteUnmatched.
const (
	RouteBoard     = "/board"
	RouteSet       = "/set"
	RouteClear     = "/clear"
	RouteHealth    = "/health"
	RouteMetrics   = "/metrics"
	RouteFeed      = "/ws"
	RouteUnmatched = "unmatched"
)

// maxSetBody bounds the POST /set request body.
const maxSetBody = 4 << 10

// Config holds the handler dependencies.
type Config struct {
	Service *service.CanvasService

	// Feed backs GET /ws. Nil disables the route.
	Feed *service.Feed

	// Metrics serves GET /metrics. Nil disables the route.
	Metrics http.Handler

	Logger *slog.Logger

	// CheckOrigin overrides the websocket origin check. Nil accepts any
	// origin, matching the permissive CORS policy of the HTTP routes.
	CheckOrigin func(r *http.Request) bool
}

// Handler routes requests by exact path, then by method. A known path with
// an unsupported method is answered like an unknown path.
type Handler struct {
	svc     *service.CanvasService
	feed    *service.Feed
	logger  *slog.Logger
	started time.Time

	routes   map[string]map[string]http.HandlerFunc
	board    boardCache
	upgrader websocket.Upgrader
}

// New creates a Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		svc:     cfg.Service,
		feed:    cfg.Feed,
		logger:  cfg.Logger,
		started: time.Now(),
		routes:  make(map[string]map[string]http.HandlerFunc),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      checkOrigin,
	}

	h.handle(http.MethodGet, RouteBoard, h.handleBoard)
	h.handle(http.MethodPost, RouteSet, h.handleSet)
	h.handle(http.MethodPost, RouteClear, h.handleClear)
	h.handle(http.MethodGet, RouteHealth, h.handleHealth)
	if cfg.Metrics != nil {
		h.handle(http.MethodGet, RouteMetrics, cfg.Metrics.ServeHTTP)
	}
	if h.feed != nil {
		h.handle(http.MethodGet, RouteFeed, h.handleFeed)
	}
	return h
}

func (h *Handler) handle(method, path string, fn http.HandlerFunc) {
	if h.routes[path] == nil {
		h.routes[path] = make(map[string]http.HandlerFunc)
	}
	h.routes[path][method] = fn
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.handlePreflight(w, r)
		return
	}
	if fn, ok := h.routes[r.URL.Path][r.Method]; ok {
		fn(w, r)
		return
	}
	writeText(w, http.StatusNotFound, "Not found")
}

// Route returns the metrics label for a request.
func (h *Handler) Route(r *http.Request) string {
	if _, ok := h.routes[r.URL.Path]; ok {
		return r.URL.Path
	}
	return RouteUnmatched
}

// writeJSON writes v as the JSON response body.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L(r.Context()).Debug("failed to encode response", "error", err)
	}
}

// writeText writes a plain-text body.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// identity returns the cooldown key for r: the client IP resolved by the
// middleware, or the peer host.
func identity(r *http.Request) string {
	if ip := logger.ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
