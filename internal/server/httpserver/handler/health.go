package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/pixmesh-go/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	board := h.svc.Board()
	resp := HealthResponse{
		Status:        "ok",
		Version:       buildinfo.Version,
		UptimeSeconds: int64(time.Since(h.started) / time.Second),
		Width:         board.Width,
		Height:        board.Height,
		BoardVersion:  board.Version,
	}
	if h.feed != nil {
		resp.Subscribers = h.feed.Len()
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handlePreflight answers OPTIONS on any path.
func (h *Handler) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}
