package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/pixmesh-go/internal/core/service"
	"github.com/yndnr/pixmesh-go/internal/telemetry/logger"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	feedMaxMessage = 512
)

// handleFeed handles GET /ws. Each accepted mutation is sent as one text
// message. A subscriber that falls behind is disconnected and is expected
// to reload the board.
func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	sub := h.feed.Subscribe()
	if sub == nil {
		writeText(w, http.StatusServiceUnavailable, "Shutting down")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		// Upgrade has already written the error response.
		logger.L(r.Context()).Debug("websocket upgrade failed", "error", err)
		return
	}

	log := logger.L(r.Context()).With("subscriber", sub.ID)
	log.Debug("feed subscriber connected")

	done := make(chan struct{})
	go h.readFeed(conn, done)
	h.writeFeed(conn, sub, done)

	sub.Close()
	_ = conn.Close()
	log.Debug("feed subscriber disconnected")
}

// readFeed discards client messages and handles pongs until the
// connection fails, then closes done.
func (h *Handler) readFeed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(feedMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// writeFeed forwards events and pings until the subscription ends or the
// reader reports a closed connection.
func (h *Handler) writeFeed(conn *websocket.Conn, sub *service.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if err := conn.WriteJSON(feedMessage(ev)); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// feedMessage converts an event to its wire form.
func feedMessage(ev service.Event) any {
	if ev.Type == service.EventClear {
		return ClearMessage{Type: string(service.EventClear)}
	}
	return PixelMessage{
		Type:  string(ev.Type),
		X:     ev.X,
		Y:     ev.Y,
		Color: ev.Color,
	}
}
