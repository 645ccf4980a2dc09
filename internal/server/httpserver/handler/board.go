package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/pixmesh-go/internal/core/service"
)

// boardCache holds the encoded board for one canvas version.
type boardCache struct {
	mu      sync.Mutex
	valid   bool
	version uint64
	body    []byte
	etag    string
}

// get returns the encoded body and ETag for view, encoding it only when the
// canvas version changed since the last call.
func (c *boardCache) get(view service.BoardView) ([]byte, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.version == view.Version {
		return c.body, c.etag, nil
	}

	body, err := json.Marshal(BoardResponse{
		Width:    view.Width,
		Height:   view.Height,
		Pixels:   view.Pixels,
		Cooldown: view.CooldownSeconds,
	})
	if err != nil {
		return nil, "", err
	}
	h1, h2 := murmur3.Sum128(body)

	c.valid = true
	c.version = view.Version
	c.body = body
	c.etag = fmt.Sprintf(`"%016x%016x"`, h1, h2)
	return c.body, c.etag, nil
}

// handleBoard handles GET /board.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	body, etag, err := h.board.get(h.svc.Board())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// etagMatch reports whether an If-None-Match header value matches etag.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
